package importer

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/piwi3910/ClinicLayout/internal/model"
)

// sizeReplacer turns every unit mark and separator into a space.
var sizeReplacer = strings.NewReplacer(
	`"`, " ",
	"’", " ",
	"'", " ",
	"-", " ",
	"FT", " ",
	"IN", " ",
	"X", " ",
	"*", " ",
)

// ParseSize reads a room size such as 9x9, 9'x12', 56"x56" or 9'6"x10'0".
// Four numbers are read as feet and inches pairs, two numbers as inches.
// Anything else, including an empty string, yields (-1, -1).
func ParseSize(s string) (width, height float64) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return -1, -1
	}
	fields := strings.Fields(sizeReplacer.Replace(s))
	nums := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return -1, -1
		}
		nums = append(nums, v)
	}

	switch len(nums) {
	case 4:
		return nums[0]*12 + nums[1], nums[2]*12 + nums[3]
	case 2:
		return nums[0], nums[1]
	}
	return -1, -1
}

var digits = regexp.MustCompile(`\d+(\.\d+)?`)

// ParseShell reads a project size into a shell in inches. Two numbers
// marked as feet ("60' x 40'", "60 FT X 40 FT") are converted, feet and
// inch pairs are read as by ParseSize, and free text falls back to its
// first two numbers in inches. A single number makes a square shell.
func ParseShell(s string) (model.Shell, bool) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	if upper == "" {
		return model.Shell{}, false
	}

	w, h := ParseSize(upper)
	if w > 0 && h > 0 {
		inFeet := strings.ContainsAny(upper, "'’") || strings.Contains(upper, "FT")
		if inFeet && len(strings.Fields(sizeReplacer.Replace(upper))) == 2 && !strings.Contains(upper, `"`) {
			w, h = w*12, h*12
		}
		return model.Shell{Width: int(math.Round(w)), Height: int(math.Round(h))}, true
	}

	nums := digits.FindAllString(upper, -1)
	if len(nums) == 0 {
		return model.Shell{}, false
	}
	w, _ = strconv.ParseFloat(nums[0], 64)
	h = w
	if len(nums) > 1 {
		h, _ = strconv.ParseFloat(nums[1], 64)
	}
	if w <= 0 || h <= 0 {
		return model.Shell{}, false
	}
	return model.Shell{Width: int(math.Round(w)), Height: int(math.Round(h))}, true
}

// NormalizeSpace upper-cases a space name and joins its words with
// underscores.
func NormalizeSpace(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.NewReplacer("-", " ", "/", " ", "'", "", "’", "", ".", "").Replace(s)
	return strings.Join(strings.Fields(s), "_")
}

// spaceAliases maps common program sheet names to rule room types.
var spaceAliases = map[string]string{
	"OPERATORY":             "TREATMENT_ROOM",
	"OPERATORIES":           "TREATMENT_ROOM",
	"OP":                    "TREATMENT_ROOM",
	"OPS":                   "TREATMENT_ROOM",
	"TREATMENT":             "TREATMENT_ROOM",
	"TREATMENT_ROOMS":       "TREATMENT_ROOM",
	"EXAM_ROOM":             "TREATMENT_ROOM",
	"STERI":                 "STERILIZATION",
	"STERILIZATION_ROOM":    "STERILIZATION",
	"STERILE":               "STERILIZATION",
	"RECEPTION":             "CHECK_IN",
	"FRONT_DESK":            "CHECK_IN",
	"CHECKIN":               "CHECK_IN",
	"CHECKOUT":              "CHECK_OUT",
	"WAITING":               "PATIENT_LOUNGE",
	"WAITING_ROOM":          "PATIENT_LOUNGE",
	"RESTROOM":              "PATIENT_RESTROOM",
	"PATIENT_BATHROOM":      "PATIENT_RESTROOM",
	"STAFF_BATHROOM":        "STAFF_RESTROOM",
	"BREAK_ROOM":            "STAFF_LOUNGE",
	"BREAKROOM":             "STAFF_LOUNGE",
	"LOUNGE":                "STAFF_LOUNGE",
	"PANO":                  "IMAGING",
	"X_RAY":                 "IMAGING",
	"XRAY":                  "IMAGING",
	"CT":                    "IMAGING",
	"CONSULTATION":          "CONSULT",
	"CONSULT_ROOM":          "CONSULT",
	"DR_OFFICE":             "DOCTOR_OFFICE",
	"DOCTORS_OFFICE":        "DOCTOR_OFFICE",
	"PRIVATE_OFFICE":        "DOCTOR_OFFICE",
	"MANAGER_OFFICE":        "OFFICE_MANAGER",
	"MECH":                  "MECHANICAL",
	"MECHANICAL_ROOM":       "MECHANICAL",
	"IT":                    "SERVER_CLOSET",
	"SERVER":                "SERVER_CLOSET",
	"JANITOR":               "JANITOR_CLOSET",
	"STORAGE":               "STORAGE_CLOSET",
	"CORRIDOR":              "CLINICAL_CORRIDOR",
	"HALLWAY":               "CLINICAL_CORRIDOR",
	"KIDS_AREA":             "CHILDRENS",
	"CHILDRENS_AREA":        "CHILDRENS",
	"PLAY_AREA":             "TOY",
	"COFFEE_BAR":            "REFRESHMENT",
	"SHIPPING_RECEIVING":    "SHIP_REC",
	"CONFERENCE_ROOM":       "CONFERENCE",
	"SURGERY":               "SURGICAL",
	"LABORATORY":            "LAB",
	"DENTAL_LAB":            "LAB",
	"MEDICAL_GAS":           "MED_GAS",
	"ENTRY":                 "VESTIBULE",
	"TOOTHBRUSHING":         "BRUSHING_STATION",
	"CARE_CENTER":           "PATIENT_CARE_CENTER",
	"TREATMENT_COORDINATOR": "TREATMENT_COORDINATION",
}
