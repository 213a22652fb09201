package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectUserBootstrapsMissingDocument(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	t.Run("full claims", func(t *testing.T) {
		u := ProjectUser(Claims{
			UID:         "u1",
			Email:       "anna@school.test",
			DisplayName: "Anna",
			PhotoURL:    "https://photos.example/anna.png",
		}, nil, CachedPrefs{Language: "en", Theme: "sky"}, now)

		assert.Equal(t, "u1", u.UID)
		assert.Equal(t, "anna@school.test", u.Email)
		assert.Equal(t, "Anna", u.UserName)
		assert.Equal(t, "https://photos.example/anna.png", u.ProfilePictureURL)
		assert.Equal(t, "en", u.LanguagePreference)
		assert.Equal(t, "sky", u.ThemePreference)
		assert.Equal(t, DefaultHomeLayout, u.HomeLayout)
		assert.False(t, u.HasCompletedTutorial)
		assert.Equal(t, now, u.CreatedAt)
	})

	t.Run("empty claims fall back to defaults", func(t *testing.T) {
		u := ProjectUser(Claims{UID: "u2"}, nil, CachedPrefs{}, now)

		assert.Equal(t, FallbackUserName, u.UserName)
		assert.Equal(t, GeneratedAvatarURL(""), u.ProfilePictureURL)
		assert.Equal(t, DefaultLanguage, u.LanguagePreference)
		assert.Equal(t, DefaultTheme, u.ThemePreference)
		assert.NotNil(t, u.SelectedSubjects)
		assert.Empty(t, u.SelectedSubjects)
	})
}

func TestProjectUserNormalizesPartialDocument(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	created := now.Add(-48 * time.Hour)

	u := ProjectUser(Claims{UID: "u1", Email: "claims@school.test"}, map[string]interface{}{
		"userName":         "Bea",
		"selectedSubjects": []interface{}{"math", "science"},
		"createdAt":        created,
	}, CachedPrefs{}, now)

	assert.Equal(t, "Bea", u.UserName)
	assert.Equal(t, "claims@school.test", u.Email, "missing email falls back to the claim")
	assert.Equal(t, []string{"math", "science"}, u.SelectedSubjects)
	assert.Equal(t, DefaultLanguage, u.LanguagePreference)
	assert.Equal(t, DefaultTheme, u.ThemePreference)
	assert.Equal(t, DefaultHomeLayout, u.HomeLayout)
	assert.Equal(t, GeneratedAvatarURL("Bea"), u.ProfilePictureURL)
	assert.Equal(t, created, u.CreatedAt)
	assert.NotNil(t, u.CustomSubjects)
}

func TestProjectUserEmptyDocumentGetsAllDefaults(t *testing.T) {
	now := time.Now().UTC()
	u := ProjectUser(Claims{UID: "u1"}, map[string]interface{}{}, CachedPrefs{}, now)

	assert.Equal(t, DefaultUserName, u.UserName)
	assert.Equal(t, GeneratedAvatarURL(DefaultUserName), u.ProfilePictureURL)
	assert.Equal(t, DefaultLanguage, u.LanguagePreference)
	assert.Equal(t, DefaultTheme, u.ThemePreference)
	assert.Equal(t, DefaultHomeLayout, u.HomeLayout)
	assert.Equal(t, now, u.CreatedAt)
}

func TestGeneratedAvatarURLEscapesName(t *testing.T) {
	assert.Contains(t, GeneratedAvatarURL("Anna de Vries"), "name=Anna+de+Vries")
	assert.Contains(t, GeneratedAvatarURL(""), "name=S")
}

func TestApplyPartial(t *testing.T) {
	base := AppUser{
		UID:              "u1",
		UserName:         "Anna",
		SchoolName:       "Lyceum",
		SelectedSubjects: []string{"math"},
	}

	tests := []struct {
		name   string
		fields map[string]interface{}
		check  func(t *testing.T, got AppUser)
	}{
		{
			name:   "single string field",
			fields: map[string]interface{}{"userName": "Bea"},
			check: func(t *testing.T, got AppUser) {
				assert.Equal(t, "Bea", got.UserName)
				assert.Equal(t, "Lyceum", got.SchoolName)
			},
		},
		{
			name:   "string slice from JSON decode",
			fields: map[string]interface{}{"selectedSubjects": []interface{}{"science", "history"}},
			check: func(t *testing.T, got AppUser) {
				assert.Equal(t, []string{"science", "history"}, got.SelectedSubjects)
			},
		},
		{
			name:   "bool field",
			fields: map[string]interface{}{"hasCompletedTutorial": true},
			check: func(t *testing.T, got AppUser) {
				assert.True(t, got.HasCompletedTutorial)
			},
		},
		{
			name:   "unknown field is ignored",
			fields: map[string]interface{}{"notAField": "x"},
			check: func(t *testing.T, got AppUser) {
				assert.Equal(t, base.UserName, got.UserName)
			},
		},
		{
			name:   "wrong type is ignored",
			fields: map[string]interface{}{"userName": 42},
			check: func(t *testing.T, got AppUser) {
				assert.Equal(t, "Anna", got.UserName)
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ApplyPartial(base, tc.fields)
			tc.check(t, got)
			assert.Equal(t, "Anna", base.UserName, "the input user is never mutated")
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	u := AppUser{
		UID:              "u1",
		SelectedSubjects: []string{"math"},
		HomeLayout:       []string{"calendar"},
	}
	c := u.Clone()
	require.Equal(t, u.SelectedSubjects, c.SelectedSubjects)

	c.SelectedSubjects[0] = "science"
	c.HomeLayout[0] = "notes"
	assert.Equal(t, "math", u.SelectedSubjects[0])
	assert.Equal(t, "calendar", u.HomeLayout[0])
}
