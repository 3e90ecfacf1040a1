package export

import (
	"fmt"
	"strings"

	"github.com/piwi3910/ClinicLayout/internal/model"
)

// FeetInches formats a length in inches as feet and inches, e.g. 9'6".
func FeetInches(in int) string {
	sign := ""
	if in < 0 {
		sign, in = "-", -in
	}
	return fmt.Sprintf("%s%d'%d\"", sign, in/12, in%12)
}

// SquareFeet converts square inches to square feet.
func SquareFeet(sqIn int) float64 {
	return float64(sqIn) / 144.0
}

// RoomLabel turns an instance ID into a readable name: TREATMENT_ROOM__2
// becomes "Treatment Room 3". Unparseable IDs are returned as is.
func RoomLabel(id string) string {
	roomType, idx, err := model.ParseInstanceID(id)
	if err != nil {
		return id
	}
	words := strings.Split(strings.ToLower(roomType), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return fmt.Sprintf("%s %d", strings.Join(words, " "), idx+1)
}
