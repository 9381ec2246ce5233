package shared

// Task types và queue names dùng chung giữa API và worker
const (
	TypePurgeImportArchives = "import:purge_archives"

	QueueImport = "import"
)

// ArchivePrefix là prefix chung của mọi file import được lưu trữ
const ArchivePrefix = "imports/"

// PurgeArchivesPayload là payload của task purge archives
type PurgeArchivesPayload struct {
	// RetentionDays = 0 => dùng cấu hình của worker
	RetentionDays int `json:"retentionDays"`
}
