package admin

// ExportResponse is the HTTP response DTO for GET /api/export_db.
type ExportResponse = Snapshot
