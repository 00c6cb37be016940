package checkout

type CheckoutRequest struct {
	CourseIDs []string `json:"course_ids" form:"course_ids"`
	// CourseID is the single-course form used by older storefronts
	CourseID string `json:"course_id" form:"course_id"`
	UserID   string `json:"user_id" form:"user_id"`
	Email    string `json:"email" form:"email"`
}

// NormalizedCourseIDs prefers the list over the single id.
func (r CheckoutRequest) NormalizedCourseIDs() []string {
	ids := normalizeIDs(r.CourseIDs)
	if len(ids) > 0 {
		return ids
	}
	return normalizeIDs([]string{r.CourseID})
}

type CheckoutResponse struct {
	URL string `json:"url"`
}

const (
	PricingTierStandard = "Standard"
	PricingTierLoyalty  = "Loyalty"

	defaultDescription   = "Online course"
	maxDescriptionLength = 100
)
