package checkout

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/stripe/stripe-go/v74"

	"github.com/MarcGrol/courseshop/lib/myconfig"
	"github.com/MarcGrol/courseshop/lib/myerrors"
	"github.com/MarcGrol/courseshop/lib/mylog"
	"github.com/MarcGrol/courseshop/services/catalog"
	"github.com/MarcGrol/courseshop/services/identity"
	"github.com/MarcGrol/courseshop/services/ledger"
)

type service struct {
	logger  mylog.Logger
	config  myconfig.Config
	payer   Payer
	catalog catalog.Reader
	ledger  ledger.Ledger
}

// Use dependency injection to isolate the infrastructure and easy testing
func newService(logger mylog.Logger, config myconfig.Config, payer Payer, catalogReader catalog.Reader, purchaseLedger ledger.Ledger) *service {
	return &service{
		logger:  logger,
		config:  config,
		payer:   payer,
		catalog: catalogReader,
		ledger:  purchaseLedger,
	}
}

// createSession starts a hosted payment session for the requested courses and returns its redirect url.
func (s *service) createSession(c context.Context, req CheckoutRequest, origin string) (string, error) {
	courseIDs := req.NormalizedCourseIDs()
	if len(courseIDs) == 0 {
		return "", myerrors.NewInvalidInputErrorf("no course ids in request")
	}

	for _, check := range []func() error{s.config.RequirePaymentProvider, s.config.RequireStore} {
		err := check()
		if err != nil {
			return "", err
		}
	}

	joinedIDs, err := EncodeCourseIDs(courseIDs)
	if err != nil {
		return "", myerrors.NewInvalidInputError(err)
	}

	courses, err := s.loadCourses(c, courseIDs)
	if err != nil {
		return "", err
	}

	buyer := identity.FromCheckout(req.UserID, req.Email)
	loyal := s.isLoyal(c, buyer)

	lineItems := []*stripe.CheckoutSessionLineItemParams{}
	for _, course := range courses {
		lineItems = append(lineItems, s.lineItem(course, loyal))
	}

	params := stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          lineItems,
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:         stripe.String(origin + "/#/dashboard"),
		CancelURL:          stripe.String(origin + "/#/cart"),
	}
	params.Metadata = map[string]string{
		MetadataCourseIDs: joinedIDs,
		MetadataType:      PurchaseTypeMultiCourse,
	}
	if b, ok := buyer.(identity.AuthenticatedBuyer); ok {
		params.ClientReferenceID = stripe.String(b.UserID)
		params.Metadata[MetadataUserID] = b.UserID
	}
	email := strings.TrimSpace(req.Email)
	if email != "" {
		params.CustomerEmail = stripe.String(email)
	} else {
		// The provider collects the email and creates a customer when it needs one
		params.CustomerCreation = stripe.String(string(stripe.CheckoutSessionCustomerCreationIfRequired))
	}

	s.payer.UseAPIKey(s.config.StripeSecretKey)
	session, err := s.payer.CreateCheckoutSession(c, params)
	if err != nil {
		return "", err
	}

	s.logger.Log(c, session.ID, mylog.SeverityInfo, "Created session %s for courses %s (loyal: %t)", session.ID, joinedIDs, loyal)

	return session.URL, nil
}

// loadCourses returns the courses in request order, failing when any id is unknown.
func (s *service) loadCourses(c context.Context, courseIDs []string) ([]catalog.Course, error) {
	found, err := s.catalog.ListByIDs(c, courseIDs)
	if err != nil {
		return nil, myerrors.NewInternalError(fmt.Errorf("error fetching courses %s: %s", strings.Join(courseIDs, ", "), err))
	}
	if len(found) == 0 {
		return nil, myerrors.NewNotFoundError(fmt.Errorf("courses not found (ids: %s)", strings.Join(courseIDs, ", ")))
	}

	byID := map[string]catalog.Course{}
	for _, course := range found {
		byID[course.ID] = course
	}

	courses := []catalog.Course{}
	missing := []string{}
	for _, id := range courseIDs {
		course, exists := byID[id]
		if !exists {
			missing = append(missing, id)
			continue
		}
		courses = append(courses, course)
	}
	if len(missing) > 0 {
		return nil, myerrors.NewNotFoundError(fmt.Errorf("courses not found (ids: %s)", strings.Join(missing, ", ")))
	}

	return courses, nil
}

func (s *service) isLoyal(c context.Context, buyer identity.Identity) bool {
	b, ok := buyer.(identity.AuthenticatedBuyer)
	if !ok {
		return false
	}

	count, err := s.ledger.CountForUser(c, b.UserID)
	if err != nil {
		s.logger.Log(c, b.UserID, mylog.SeverityWarn, "Error counting purchases of %s, charging standard prices: %s", b.UserID, err)
		return false
	}

	return count > 0
}

func (s *service) lineItem(course catalog.Course, loyal bool) *stripe.CheckoutSessionLineItemParams {
	price, tier := chargedPrice(course, loyal)

	product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
		Name:        stripe.String(course.Title),
		Description: stripe.String(describe(course)),
		Metadata: map[string]string{
			"course_id":    course.ID,
			"pricing_tier": tier,
		},
	}
	if course.Image != "" {
		product.Images = stripe.StringSlice([]string{course.Image})
	}

	return &stripe.CheckoutSessionLineItemParams{
		PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
			Currency:    stripe.String(s.config.Currency),
			ProductData: product,
			UnitAmount:  stripe.Int64(toMinorUnits(price)),
		},
		Quantity: stripe.Int64(1),
	}
}

// chargedPrice applies the loyalty discount when the buyer is loyal and the discount is sane.
func chargedPrice(course catalog.Course, loyal bool) (float64, string) {
	if loyal && course.DiscountedPrice != nil && *course.DiscountedPrice > 0 && *course.DiscountedPrice < course.Price {
		return *course.DiscountedPrice, PricingTierLoyalty
	}
	return course.Price, PricingTierStandard
}

func toMinorUnits(price float64) int64 {
	return int64(math.Round(price * 100))
}

func describe(course catalog.Course) string {
	description := strings.TrimSpace(course.Description)
	if description == "" {
		return defaultDescription
	}
	runes := []rune(description)
	if len(runes) > maxDescriptionLength {
		return string(runes[:maxDescriptionLength])
	}
	return description
}
