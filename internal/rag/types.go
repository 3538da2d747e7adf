package rag

// AskRequest represents a RAG query request.
type AskRequest struct {
	// Question is the user's question to answer.
	Question string `json:"question"`
	// DocumentID optionally restricts retrieval to a single document.
	DocumentID string `json:"document_id,omitempty"`
	// K optionally specifies the desired chunk count. Defaults to 5, capped at 20.
	K int `json:"k,omitempty"`
}

// Reference represents a chunk that was used to generate the answer.
type Reference struct {
	// DocumentID is the document the chunk belongs to.
	DocumentID string `json:"document_id"`
	// FileName is the original file name of the document.
	FileName string `json:"file_name"`
	// SectionTitle is the structural address of the chunk
	// (e.g., "Article 2 > 2.1 > B" or "chunk_1").
	SectionTitle string `json:"section_title"`
	// ChunkIndex is the chunk index within the document.
	ChunkIndex int `json:"chunk_index"`
}

// AskResponse represents the response from a RAG query.
type AskResponse struct {
	// Answer is the generated answer from the LLM.
	Answer string `json:"answer"`
	// References are the chunks that were used to generate the answer.
	References []Reference `json:"references"`
}
