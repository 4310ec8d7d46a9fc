package listing

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fjod/tradehub/internal/domain"
	"github.com/shopspring/decimal"
)

type Step int

const (
	StepCategory Step = 1
	StepDetails  Step = 2
	StepReview   Step = 3
)

// DefaultImage is attached to listings created without photos.
const DefaultImage = "https://images.unsplash.com/photo-1505740420928-5e560c06d30e?w=800"

// ErrDraftPublished is returned when a draft that already produced a listing is published again.
var ErrDraftPublished = errors.New("draft already published")

// Form is the raw wizard input. Price stays a string until validation.
type Form struct {
	Category    string   `json:"category"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       string   `json:"price"`
	Condition   string   `json:"condition"`
	Location    string   `json:"location"`
	Images      []string `json:"images"`
	Tags        []string `json:"tags"`
}

// Draft is a listing being built through the three-step wizard.
type Draft struct {
	mu       sync.Mutex
	id       string
	sellerID string
	created  time.Time
	step     Step
	form     Form
	errors   map[Field]string

	published bool
}

func NewDraft(id, sellerID string) *Draft {
	return &Draft{
		id:       id,
		sellerID: sellerID,
		created:  time.Now().UTC(),
		step:     StepCategory,
		form:     Form{Images: []string{DefaultImage}, Tags: []string{}},
		errors:   map[Field]string{},
	}
}

func (d *Draft) ID() string       { return d.id }
func (d *Draft) SellerID() string { return d.sellerID }

// Set updates one field and clears only that field's error.
func (d *Draft) Set(field Field, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch field {
	case FieldCategory:
		d.form.Category = value
	case FieldTitle:
		d.form.Title = value
	case FieldDescription:
		d.form.Description = value
	case FieldPrice:
		d.form.Price = value
	case FieldCondition:
		d.form.Condition = value
	case FieldLocation:
		d.form.Location = value
	default:
		return fmt.Errorf("%w: unknown field %q", domain.ErrValidationFailed, field)
	}
	delete(d.errors, field)
	return nil
}

// SetImages replaces the photos. An empty set falls back to DefaultImage.
func (d *Draft) SetImages(images []string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	cleaned := make([]string, 0, len(images))
	for _, img := range images {
		if img = strings.TrimSpace(img); img != "" {
			cleaned = append(cleaned, img)
		}
	}
	if len(cleaned) == 0 {
		cleaned = []string{DefaultImage}
	}
	d.form.Images = cleaned
}

// AddTag adds a trimmed tag. Blank and duplicate tags are ignored.
func (d *Draft) AddTag(tag string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	tag = strings.TrimSpace(tag)
	if tag == "" || slices.Contains(d.form.Tags, tag) {
		return false
	}
	d.form.Tags = append(d.form.Tags, tag)
	return true
}

func (d *Draft) RemoveTag(tag string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	i := slices.Index(d.form.Tags, strings.TrimSpace(tag))
	if i < 0 {
		return false
	}
	d.form.Tags = slices.Delete(d.form.Tags, i, i+1)
	return true
}

// Next validates the current step and advances. It stays on Review.
func (d *Draft) Next() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.step == StepReview {
		return nil
	}
	if errs := validateStep(d.step, d.form); len(errs) > 0 {
		d.errors = errs
		return &ValidationError{Fields: maps.Clone(errs)}
	}
	d.errors = map[Field]string{}
	d.step++
	return nil
}

// Back returns to the previous step without validation.
func (d *Draft) Back() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.step > StepCategory {
		d.step--
	}
}

func (d *Draft) Step() Step {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.step
}

func (d *Draft) Errors() map[Field]string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return maps.Clone(d.errors)
}

// View is a point-in-time copy of a draft.
type View struct {
	ID        string           `json:"id"`
	SellerID  string           `json:"sellerId"`
	Step      Step             `json:"step"`
	Form      Form             `json:"form"`
	Errors    map[Field]string `json:"errors"`
	CreatedAt time.Time        `json:"createdAt"`
}

func (d *Draft) View() View {
	d.mu.Lock()
	defer d.mu.Unlock()

	form := d.form
	form.Images = slices.Clone(d.form.Images)
	form.Tags = slices.Clone(d.form.Tags)
	return View{
		ID:        d.id,
		SellerID:  d.sellerID,
		Step:      d.step,
		Form:      form,
		Errors:    maps.Clone(d.errors),
		CreatedAt: d.created,
	}
}

// product re-validates the category and details steps and builds the listing.
func (d *Draft) product() (domain.Product, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.published {
		return domain.Product{}, ErrDraftPublished
	}
	if d.step != StepReview {
		return domain.Product{}, fmt.Errorf("%w: draft is on step %d, not review", domain.ErrValidationFailed, d.step)
	}

	errs := validateStep(StepCategory, d.form)
	maps.Copy(errs, validateStep(StepDetails, d.form))
	if len(errs) > 0 {
		d.errors = errs
		return domain.Product{}, &ValidationError{Fields: maps.Clone(errs)}
	}

	price, _ := decimal.NewFromString(strings.TrimSpace(d.form.Price))
	d.published = true
	return domain.Product{
		Title:       strings.TrimSpace(d.form.Title),
		Description: strings.TrimSpace(d.form.Description),
		Price:       price,
		Condition:   domain.Condition(d.form.Condition),
		Category:    d.form.Category,
		Location:    strings.TrimSpace(d.form.Location),
		Images:      slices.Clone(d.form.Images),
		Tags:        slices.Clone(d.form.Tags),
		SellerID:    d.sellerID,
		Status:      domain.StatusActive,
	}, nil
}

// release lets a draft be published again after the store rejected it.
func (d *Draft) release() {
	d.mu.Lock()
	d.published = false
	d.mu.Unlock()
}

func validateStep(step Step, f Form) map[Field]string {
	errs := map[Field]string{}

	switch step {
	case StepCategory:
		if strings.TrimSpace(f.Category) == "" {
			errs[FieldCategory] = msgCategory
		}
	case StepDetails:
		if strings.TrimSpace(f.Title) == "" {
			errs[FieldTitle] = msgTitle
		}
		if strings.TrimSpace(f.Description) == "" {
			errs[FieldDescription] = msgDescription
		}
		price, err := decimal.NewFromString(strings.TrimSpace(f.Price))
		if err != nil || !price.IsPositive() {
			errs[FieldPrice] = msgPrice
		}
		if !domain.Condition(f.Condition).Valid() {
			errs[FieldCondition] = msgCondition
		}
		if strings.TrimSpace(f.Location) == "" {
			errs[FieldLocation] = msgLocation
		}
	}
	return errs
}
