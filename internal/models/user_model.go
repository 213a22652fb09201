package models

import (
	"fmt"
	"net/url"
	"time"
)

// GuestUID marks a demo session. A guest never gets remote listeners and
// cannot issue mutations.
const GuestUID = "guest-user"

// Defaults applied when the remote profile document omits a field.
const (
	DefaultUserName   = "Gebruiker"
	DefaultLanguage   = "nl"
	DefaultTheme      = "emerald"
	FallbackUserName  = "Student"
	avatarInitialSeed = "S"
)

// DefaultHomeLayout is the widget ordering used until the user customizes
// their home screen.
var DefaultHomeLayout = []string{"subjects", "recentFiles", "calendar", "notes"}

// AppUser is the fully-populated local projection of a user's profile
// document. Every field is total: projection from a partial remote document
// always yields a usable value, never an absent one.
type AppUser struct {
	UID                  string    `json:"uid" firestore:"-"` // Firebase Auth UID, the document ID
	Email                string    `json:"email" firestore:"email"`
	UserName             string    `json:"userName" firestore:"userName"`
	ProfilePictureURL    string    `json:"profilePictureUrl" firestore:"profilePictureUrl"`
	SelectedSubjects     []string  `json:"selectedSubjects" firestore:"selectedSubjects"`
	CustomSubjects       []string  `json:"customSubjects" firestore:"customSubjects"`
	SchoolName           string    `json:"schoolName" firestore:"schoolName"`
	ClassName            string    `json:"className" firestore:"className"`
	EducationLevel       string    `json:"educationLevel" firestore:"educationLevel"`
	LanguagePreference   string    `json:"languagePreference" firestore:"languagePreference"`
	ThemePreference      string    `json:"themePreference" firestore:"themePreference"`
	HomeLayout           []string  `json:"homeLayout" firestore:"homeLayout"`
	HasCompletedTutorial bool      `json:"hasCompletedTutorial" firestore:"hasCompletedTutorial"`
	CreatedAt            time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
}

// Claims are the identity-provider attributes used to bootstrap a profile
// when no document exists yet (the new-user path).
type Claims struct {
	UID         string
	Email       string
	DisplayName string
	PhotoURL    string
}

// CachedPrefs are the locally persisted, non-authoritative preference values
// used to seed a bootstrapped profile.
type CachedPrefs struct {
	Language string
	Theme    string
}

// GeneratedAvatarURL returns a deterministic placeholder avatar keyed by the
// display name.
func GeneratedAvatarURL(name string) string {
	if name == "" {
		name = avatarInitialSeed
	}
	return fmt.Sprintf("https://ui-avatars.com/api/?name=%s&background=random&color=fff", url.QueryEscape(name))
}

// ProjectUser normalizes a profile document into a complete AppUser.
//
// When doc is non-nil, each recognized field uses the remote value if present
// and non-empty, otherwise the documented default. When doc is nil the
// document does not exist and a default profile is synthesized from the
// identity provider's claims and the locally cached preferences.
func ProjectUser(claims Claims, doc map[string]interface{}, cached CachedPrefs, now time.Time) AppUser {
	if cached.Language == "" {
		cached.Language = DefaultLanguage
	}
	if cached.Theme == "" {
		cached.Theme = DefaultTheme
	}

	if doc == nil {
		name := claims.DisplayName
		if name == "" {
			name = FallbackUserName
		}
		avatar := claims.PhotoURL
		if avatar == "" {
			avatar = GeneratedAvatarURL(claims.DisplayName)
		}
		return AppUser{
			UID:                  claims.UID,
			Email:                claims.Email,
			UserName:             name,
			ProfilePictureURL:    avatar,
			SelectedSubjects:     []string{},
			CustomSubjects:       []string{},
			LanguagePreference:   cached.Language,
			ThemePreference:      cached.Theme,
			HomeLayout:           append([]string(nil), DefaultHomeLayout...),
			HasCompletedTutorial: false,
			CreatedAt:            now,
		}
	}

	u := AppUser{
		UID:                  claims.UID,
		Email:                docString(doc, "email", claims.Email),
		UserName:             docString(doc, "userName", DefaultUserName),
		SchoolName:           docString(doc, "schoolName", ""),
		ClassName:            docString(doc, "className", ""),
		EducationLevel:       docString(doc, "educationLevel", ""),
		LanguagePreference:   docString(doc, "languagePreference", DefaultLanguage),
		ThemePreference:      docString(doc, "themePreference", DefaultTheme),
		SelectedSubjects:     docStrings(doc, "selectedSubjects"),
		CustomSubjects:       docStrings(doc, "customSubjects"),
		HasCompletedTutorial: docBool(doc, "hasCompletedTutorial"),
		CreatedAt:            docTime(doc, "createdAt", now),
	}
	u.ProfilePictureURL = docString(doc, "profilePictureUrl", GeneratedAvatarURL(u.UserName))
	u.HomeLayout = docStrings(doc, "homeLayout")
	if len(u.HomeLayout) == 0 {
		u.HomeLayout = append([]string(nil), DefaultHomeLayout...)
	}
	return u
}

// Clone returns a deep copy of the user.
func (u AppUser) Clone() AppUser {
	u.SelectedSubjects = append([]string{}, u.SelectedSubjects...)
	u.CustomSubjects = append([]string{}, u.CustomSubjects...)
	u.HomeLayout = append([]string{}, u.HomeLayout...)
	return u
}

// ApplyPartial merges a partial field set into a copy of the user. Unknown
// fields are ignored so a mutation request can round-trip exactly the fields
// it will write remotely.
func ApplyPartial(u AppUser, fields map[string]interface{}) AppUser {
	for k, v := range fields {
		switch k {
		case "email":
			if s, ok := v.(string); ok {
				u.Email = s
			}
		case "userName":
			if s, ok := v.(string); ok {
				u.UserName = s
			}
		case "profilePictureUrl":
			if s, ok := v.(string); ok {
				u.ProfilePictureURL = s
			}
		case "schoolName":
			if s, ok := v.(string); ok {
				u.SchoolName = s
			}
		case "className":
			if s, ok := v.(string); ok {
				u.ClassName = s
			}
		case "educationLevel":
			if s, ok := v.(string); ok {
				u.EducationLevel = s
			}
		case "languagePreference":
			if s, ok := v.(string); ok {
				u.LanguagePreference = s
			}
		case "themePreference":
			if s, ok := v.(string); ok {
				u.ThemePreference = s
			}
		case "selectedSubjects":
			u.SelectedSubjects = toStrings(v)
		case "customSubjects":
			u.CustomSubjects = toStrings(v)
		case "homeLayout":
			u.HomeLayout = toStrings(v)
		case "hasCompletedTutorial":
			if b, ok := v.(bool); ok {
				u.HasCompletedTutorial = b
			}
		}
	}
	return u
}

func docString(doc map[string]interface{}, key, def string) string {
	if s, ok := doc[key].(string); ok && s != "" {
		return s
	}
	return def
}

func docBool(doc map[string]interface{}, key string) bool {
	b, _ := doc[key].(bool)
	return b
}

func docTime(doc map[string]interface{}, key string, def time.Time) time.Time {
	if t, ok := doc[key].(time.Time); ok && !t.IsZero() {
		return t
	}
	return def
}

func docStrings(doc map[string]interface{}, key string) []string {
	return toStrings(doc[key])
}

func toStrings(v interface{}) []string {
	switch vv := v.(type) {
	case []string:
		return append([]string{}, vv...)
	case []interface{}:
		out := make([]string, 0, len(vv))
		for _, e := range vv {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return []string{}
	}
}
