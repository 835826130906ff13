package models

import (
	"strings"
	"time"
	"unicode"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Document is an uploaded file stored inline (base64) in the documents collection
type Document struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty" swaggertype:"string" example:"6650f0c2a1b2c3d4e5f60718"`
	ApplicationID string             `json:"applicationId" bson:"applicationId"`
	AgencyID      string             `json:"agencyId" bson:"agencyId"`
	Name          string             `json:"name" bson:"name" example:"10th Marksheet"`
	Type          string             `json:"type" bson:"type" example:"marksheet_10th"`
	FileName      string             `json:"fileName" bson:"fileName" example:"marksheet.pdf"`
	MimeType      string             `json:"mimeType" bson:"mimeType" example:"application/pdf"`
	Size          int64              `json:"size" bson:"size"`
	Data          string             `json:"-" bson:"data,omitempty"`
	Status        DocumentStatus     `json:"status" bson:"status" example:"pending"`
	Remarks       string             `json:"remarks,omitempty" bson:"remarks,omitempty"`
	UploadedBy    string             `json:"uploadedBy" bson:"uploadedBy"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// DocumentTypeOther is used when nothing recognisable is left after normalisation
const DocumentTypeOther = "other"

// documentTypeAliases maps canonical document keys to the phrases agencies
// actually type. Order matters: the first match wins.
var documentTypeAliases = []struct {
	key     string
	aliases []string
}{
	{"photo", []string{"photo", "photograph", "picture", "passport size"}},
	{"passport", []string{"passport"}},
	{"marksheet_10th", []string{"10th", "tenth", "ssc", "class 10", "x marksheet", "matric", "matriculation"}},
	{"marksheet_12th", []string{"12th", "twelfth", "hsc", "class 12", "xii", "intermediate"}},
	{"graduation", []string{"graduation", "degree", "bachelor", "bachelors", "ug"}},
	{"transfer_certificate", []string{"transfer certificate", "tc", "leaving certificate", "school leaving"}},
	{"migration_certificate", []string{"migration"}},
	{"aadhaar", []string{"aadhaar", "aadhar", "uid", "national id"}},
	{"birth_certificate", []string{"birth", "dob certificate"}},
	{"character_certificate", []string{"character", "conduct"}},
}

// NormalizeDocumentType maps free text such as "10th Marksheet" or
// "passport copy" to a canonical document key. Unknown types become a
// lowercase snake_case slug of the input.
func NormalizeDocumentType(raw string) string {
	tokens := strings.FieldsFunc(strings.ToLower(raw), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(tokens) == 0 {
		return DocumentTypeOther
	}

	// photo comes first so "passport photo" is a photo, not a passport
	for _, entry := range documentTypeAliases {
		for _, alias := range entry.aliases {
			if containsPhrase(tokens, alias) {
				return entry.key
			}
		}
	}

	return strings.Join(tokens, "_")
}

func containsPhrase(tokens []string, phrase string) bool {
	words := strings.Fields(phrase)
	if len(words) == 0 || len(words) > len(tokens) {
		return false
	}
outer:
	for i := 0; i+len(words) <= len(tokens); i++ {
		for j, w := range words {
			if tokens[i+j] != w {
				continue outer
			}
		}
		return true
	}
	return false
}
