package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Keys must carry a type prefix so different entities never collide.
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// CategoryUUID is the stable ID of the placemark category with the given slug.
func CategoryUUID(slug string) uuid.UUID {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return uuid.Nil
	}
	return UUID("placemarks:category:" + slug)
}

// SettingUUID is the stable ID of a stored option row.
func SettingUUID(key string) uuid.UUID {
	key = strings.TrimSpace(key)
	if key == "" {
		return uuid.Nil
	}
	return UUID("placemarks:setting:" + key)
}
