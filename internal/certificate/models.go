// Package certificate renders and stores signed-record certificates. A
// record with a PDF attachment gets the original file stamped in place; all
// other records get a synthesized summary document.
package certificate

import (
	"fmt"
	"time"
)

// Record is one generated certificate. The (EntityID, WorkerID, Token)
// triple is the identity; records are append-only.
type Record struct {
	EntityID  string    `json:"entityId"`
	WorkerID  string    `json:"workerId"`
	Token     string    `json:"token"`
	FileName  string    `json:"fileName"`
	MimeType  string    `json:"mimeType"`
	Content   []byte    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

func (r *Record) Key() string {
	return CompositeKey(r.EntityID, r.WorkerID, r.Token)
}

func CompositeKey(entityID, workerID, token string) string {
	return fmt.Sprintf("%s_%s_%s", entityID, workerID, token)
}
