// Package widget implements the hotel-search form controller: a free-text
// location, a check-in date and a nights count are turned into one search
// request posted to the search-trigger endpoint, followed by a navigation to
// the results page.
//
// The host UI is abstracted away: the controller works against an injected
// set of field bindings and registers named handlers on an event source, so
// it runs the same under a real page and under tests.
package widget

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	sharedmodels "github.com/markhiner/Hiner.nyc/shared/models"
)

const (
	// DateLayout is the canonical machine-readable date carried by the picker.
	DateLayout = "2006-01-02"

	// DisplayLayout is the human-readable form shown in the display field,
	// en-US style: abbreviated weekday, abbreviated month, two-digit day.
	DisplayLayout = "Mon, Jan 02"

	// ResultsPage is where the controller navigates once a submission settles.
	ResultsPage = "results.html"
)

// Field is a single UI input the controller reads and writes.
type Field interface {
	Value() string
	SetValue(string)
}

// DateControl is the native date-picker control. Its Value is the canonical
// YYYY-MM-DD date; ShowPicker presents the native selection UI where the host
// environment supports one.
type DateControl interface {
	Field
	CanShowPicker() bool
	ShowPicker()
	Focus()
}

// Bindings enumerates the controls the controller owns while the form is live.
type Bindings struct {
	Where       Field
	WhenDisplay Field
	WhenPicker  DateControl
	Nights      Field
}

// Events is the UI event source. Implementations must suppress the host's
// default submit action; the controller performs the navigation itself.
type Events interface {
	OnDisplayActivate(func())
	OnPickerChange(func())
	OnSubmit(func())
}

// Submitter issues the search request. A returned error means the request
// never settled (transport failure); any settled response, whatever its
// status, is success from the controller's point of view.
type Submitter interface {
	Submit(ctx context.Context, req sharedmodels.SearchRequest) error
}

// Navigator performs the post-submission page navigation.
type Navigator interface {
	Navigate(page string)
}

type Controller struct {
	b   Bindings
	sub Submitter
	nav Navigator
	log *zap.Logger
	now func() time.Time
}

type Option func(*Controller)

// WithClock fixes the controller's notion of the current date.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

func New(b Bindings, sub Submitter, nav Navigator, log *zap.Logger, opts ...Option) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Controller{
		b:   b,
		sub: sub,
		nav: nav,
		log: log,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Init seeds both date fields with tomorrow's date and registers the event
// handlers. It must run before the first possible user interaction.
func (c *Controller) Init(ev Events) {
	tomorrow := c.now().AddDate(0, 0, 1)
	c.b.WhenPicker.SetValue(tomorrow.Format(DateLayout))
	c.b.WhenDisplay.SetValue(tomorrow.Format(DisplayLayout))

	ev.OnDisplayActivate(c.handleDisplayActivate)
	ev.OnPickerChange(c.handlePickerChange)
	ev.OnSubmit(c.handleSubmit)
}

func (c *Controller) handleDisplayActivate() {
	if c.b.WhenPicker.CanShowPicker() {
		c.b.WhenPicker.ShowPicker()
		return
	}
	c.b.WhenPicker.Focus()
}

func (c *Controller) handlePickerChange() {
	d, err := time.ParseInLocation(DateLayout, c.b.WhenPicker.Value(), time.Local)
	if err != nil {
		return
	}
	c.b.WhenDisplay.SetValue(d.Format(DisplayLayout))
}

// Nights parses the nights field, falling back to 1 when the value is not a
// positive integer.
func (c *Controller) Nights() int {
	n, err := strconv.Atoi(strings.TrimSpace(c.b.Nights.Value()))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// BuildRequest assembles a fresh search request from the current field
// values. The check-out date is always check-in plus the nights count, in
// local calendar days.
func (c *Controller) BuildRequest() (sharedmodels.SearchRequest, error) {
	checkIn, err := time.ParseInLocation(DateLayout, c.b.WhenPicker.Value(), time.Local)
	if err != nil {
		return sharedmodels.SearchRequest{}, err
	}
	checkOut := checkIn.AddDate(0, 0, c.Nights())

	return sharedmodels.SearchRequest{
		Q:            strings.TrimSpace(c.b.Where.Value()),
		CheckInDate:  checkIn.Format(DateLayout),
		CheckOutDate: checkOut.Format(DateLayout),
	}, nil
}

func (c *Controller) handleSubmit() {
	req, err := c.BuildRequest()
	if err != nil {
		c.log.Warn("unusable check-in date", zap.String("value", c.b.WhenPicker.Value()), zap.Error(err))
		return
	}

	if err := c.sub.Submit(context.Background(), req); err != nil {
		// Transport failure: surface it in the log, skip the navigation.
		c.log.Warn("search submission failed", zap.String("q", req.Q), zap.Error(err))
		return
	}

	c.nav.Navigate(ResultsPage)
}
