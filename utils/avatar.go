package utils

import (
	"fmt"
	"hash/fnv"
	"net/url"
	"strings"
)

// avatarColors are the background colors guest avatars rotate through.
var avatarColors = []string{
	"FF6B6B", "4ECDC4", "45B7D1", "96CEB4", "FFEAA7",
	"DDA0DD", "98D8C8", "F7DC6F", "BB8FCE", "85C1E9",
}

// GuestAvatarURL builds a stable initials avatar for a guest profile. The
// same name always maps to the same color, so a guest's avatar does not
// change between visits.
func GuestAvatarURL(name string) string {
	initials := InitialsFromName(name)
	color := avatarColors[nameHash(name)%uint32(len(avatarColors))]
	return fmt.Sprintf("https://api.dicebear.com/7.x/initials/svg?seed=%s&backgroundColor=%s",
		url.QueryEscape(initials), color)
}

// InitialsFromName extracts up to two initials from a full name.
func InitialsFromName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "G"
	}

	initials := string([]rune(fields[0])[0])
	if len(fields) > 1 {
		last := fields[len(fields)-1]
		initials += string([]rune(last)[0])
	}
	return strings.ToUpper(initials)
}

func nameHash(name string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(name))))
	return h.Sum32()
}
