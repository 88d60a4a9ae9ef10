package realtime

// Named realtime streams served by the directory.
const (
	// StreamSaved carries per-user saved-list updates.
	StreamSaved = "saved.companies"
	// StreamCompanies carries directory-wide listing changes.
	StreamCompanies = "companies"
)

// Events published on the streams above.
const (
	EventSavedCount     = "saved.count"
	EventCompanyCreated = "company.created"
	EventCompanyUpdated = "company.updated"
	EventCompanyDeleted = "company.deleted"
	EventPong           = "pong"
)

// KnownStreams lists every stream a client may subscribe to.
func KnownStreams() []string {
	return []string{StreamSaved, StreamCompanies}
}
