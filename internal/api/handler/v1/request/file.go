package request

import validation "github.com/go-ozzo/ozzo-validation"

type DeleteFile struct {
	FilePath string `json:"file_path"`
}

func (req *DeleteFile) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.FilePath, validation.Required),
	)
}
