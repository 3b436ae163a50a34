package dto

// AvatarUploadDTO requests a presigned upload slot for a profile photo
type AvatarUploadDTO struct {
	Filename string `json:"filename" validate:"required"`
}

// AvatarUploadResponseDTO carries the presigned PUT URL and the resulting
// public photo URL.
type AvatarUploadResponseDTO struct {
	UploadURL string `json:"upload_url"`
	PhotoURL  string `json:"photo_url"`
}
