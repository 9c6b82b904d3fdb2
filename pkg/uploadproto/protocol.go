// Package uploadproto описывает HTTP-протокол взаимодействия с сервером загрузок.
package uploadproto

// Параметры REST-протокола возобновляемых загрузок.
const (
	UploadsPathFormat  = "%s/uploads"
	UploadPathFormat   = "%s/uploads/%s"
	ChunkPathFormat    = "%s/uploads/%s/chunks/%d"
	CompletePathFormat = "%s/uploads/%s/complete"
	FilesPathFormat    = "%s/files"
	FilePathFormat     = "%s/files/%s"
	HealthPathFormat   = "%s/health"

	HeaderChecksum = "X-Checksum-Sha256"
	HeaderFileName = "X-File-Name"
)
