package syncapi

import "github.com/dmitrijs2005/secrimpo/internal/timex"

// CategorySummary holds per-category outcome counts.
type CategorySummary struct {
	New       int `json:"novos"`
	Duplicate int `json:"duplicados"`
}

// Response is the server's classification of one Envelope. Timestamps use
// timex.Time so replies from servers that omit the zone offset still decode.
type Response struct {
	Success         bool                         `json:"sucesso"`
	User            string                       `json:"usuario,omitempty"`
	ServerTimestamp timex.Time                   `json:"timestamp_servidor"`
	Summary         map[Category]CategorySummary `json:"resumo"`
	Details         []string                     `json:"detalhes"`
	Errors          []string                     `json:"erros"`
	SyncID          int64                        `json:"sync_id,omitempty"`
}

// ErrorBody is the structured error returned with non-2xx responses.
// The reference server fills Detail; older servers used Error.
type ErrorBody struct {
	Detail string `json:"detail,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Message returns whichever of Detail or Error is set.
func (e ErrorBody) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Error
}

// ProbeResponse answers POST /sincronizar/teste.
type ProbeResponse struct {
	Status    string     `json:"status"`
	Message   string     `json:"message"`
	Timestamp timex.Time `json:"timestamp"`
	Version   string     `json:"version"`
}

// Sync log status values.
const (
	StatusSuccess = "sucesso"
	StatusPartial = "parcial"
	StatusNever   = "nunca_sincronizado"
)

// Status is the server-side sync state of one user.
type Status struct {
	User              string      `json:"usuario"`
	LastSync          *timex.Time `json:"ultima_sincronizacao"`
	TotalSyncs        int64       `json:"total_sincronizacoes"`
	TotalSyncedRecord int64       `json:"total_registros_sincronizados"`
	LastSyncStatus    string      `json:"status_ultima_sync"`
}

// HistoryEntry is one row of the server's sync log.
type HistoryEntry struct {
	ID         int64      `json:"id"`
	User       string     `json:"usuario"`
	Timestamp  timex.Time `json:"timestamp"`
	Total      int        `json:"total_registros"`
	New        int        `json:"registros_novos"`
	Duplicate  int        `json:"registros_duplicados"`
	Status     string     `json:"status"`
	Details    string     `json:"detalhes"`
	ClientUUID string     `json:"client_uuid"`
}
