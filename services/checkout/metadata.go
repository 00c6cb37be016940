package checkout

import (
	"fmt"
	"strings"
)

const (
	MetadataCourseIDs = "course_ids"
	MetadataCourseID  = "course_id"
	MetadataUserID    = "user_id"
	MetadataType      = "type"

	PurchaseTypeMultiCourse = "multi_course_purchase"

	// MaxMetadataValueLength is the provider's limit on a single metadata value.
	MaxMetadataValueLength = 500
)

// EncodeCourseIDs joins ids for the session metadata. It refuses lists that would not fit,
// because the provider would truncate them.
func EncodeCourseIDs(ids []string) (string, error) {
	for _, id := range ids {
		if strings.Contains(id, ",") {
			return "", fmt.Errorf("course id %q contains a comma", id)
		}
	}
	joined := strings.Join(ids, ",")
	if len(joined) > MaxMetadataValueLength {
		return "", fmt.Errorf("too many courses in one checkout: %d characters exceed the limit of %d", len(joined), MaxMetadataValueLength)
	}
	return joined, nil
}

// DecodeCourseIDs reads the course ids from session metadata, falling back to the single-course key.
func DecodeCourseIDs(metadata map[string]string) []string {
	joined := metadata[MetadataCourseIDs]
	if strings.TrimSpace(joined) == "" {
		joined = metadata[MetadataCourseID]
	}
	return normalizeIDs(strings.Split(joined, ","))
}

// normalizeIDs trims ids and drops empty and repeated ones, keeping first-seen order.
func normalizeIDs(ids []string) []string {
	seen := map[string]bool{}
	result := []string{}
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		result = append(result, id)
	}
	return result
}
