package remote

import "fmt"

// Logical addressing of the hosted store, namespaced by the application
// instance identifier.

// ProfilePath is the profile document for a user under the public users
// collection.
func ProfilePath(appID, uid string) string {
	return fmt.Sprintf("artifacts/%s/public/data/users/%s", appID, uid)
}

// EventsPath is the per-user calendar events collection.
func EventsPath(appID, uid string) string {
	return fmt.Sprintf("artifacts/%s/users/%s/calendarEvents", appID, uid)
}

// FilesPath is the shared files collection, filtered by owner in queries.
func FilesPath(appID string) string {
	return fmt.Sprintf("artifacts/%s/public/data/files", appID)
}

// AvatarPath is the object-storage location for an uploaded profile picture.
func AvatarPath(uid, filename string) string {
	return fmt.Sprintf("profilePictures/%s/%s", uid, filename)
}
