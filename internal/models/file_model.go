package models

import "time"

// FileData is a study file reference owned by a single user. This client only
// ever queries files filtered by their owner.
type FileData struct {
	ID          string    `json:"id" firestore:"-"`
	Title       string    `json:"title" firestore:"title"`
	Description string    `json:"description,omitempty" firestore:"description"`
	OwnerID     string    `json:"ownerId" firestore:"ownerId"`
	Subject     string    `json:"subject" firestore:"subject"`
	DownloadURL string    `json:"downloadUrl,omitempty" firestore:"downloadUrl"`
	CreatedAt   time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
}

// FileFromDoc decodes a raw document into a FileData.
func FileFromDoc(id string, doc map[string]interface{}) FileData {
	return FileData{
		ID:          id,
		Title:       docString(doc, "title", ""),
		Description: docString(doc, "description", ""),
		OwnerID:     docString(doc, "ownerId", ""),
		Subject:     docString(doc, "subject", ""),
		DownloadURL: docString(doc, "downloadUrl", ""),
		CreatedAt:   docTime(doc, "createdAt", time.Time{}),
	}
}
