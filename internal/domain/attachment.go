package domain

// Attachment describes an uploaded file. FilePath is the public path stored
// on supplier items.
type Attachment struct {
	FilePath string `json:"file_path"`
	FileName string `json:"file_name"`
	FileSize int64  `json:"file_size"`
}
