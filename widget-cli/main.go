// widget-cli drives the hotel-search form controller from a terminal instead
// of a page: same fields, same derived request, same results navigation.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	sharedlogger "github.com/markhiner/Hiner.nyc/shared/logger"
	"github.com/markhiner/Hiner.nyc/widget"
)

type memField struct{ v string }

func (f *memField) Value() string     { return f.v }
func (f *memField) SetValue(s string) { f.v = s }

// memPicker has no native UI to show; activation falls through to Focus.
type memPicker struct{ memField }

func (p *memPicker) CanShowPicker() bool { return false }
func (p *memPicker) ShowPicker()         {}
func (p *memPicker) Focus()              {}

type cliEvents struct {
	displayActivate func()
	pickerChange    func()
	submit          func()
}

func (e *cliEvents) OnDisplayActivate(fn func()) { e.displayActivate = fn }
func (e *cliEvents) OnPickerChange(fn func())    { e.pickerChange = fn }
func (e *cliEvents) OnSubmit(fn func())          { e.submit = fn }

type printNavigator struct{ base string }

func (n *printNavigator) Navigate(page string) {
	fmt.Printf("Results ready: %s/%s\n", strings.TrimRight(n.base, "/"), page)
}

func main() {
	where := flag.String("where", "", "location to search (required)")
	when := flag.String("when", "", "check-in date, YYYY-MM-DD (default tomorrow)")
	nights := flag.String("nights", "1", "number of nights")
	server := flag.String("server", "http://localhost:8080", "search service base URL")
	flag.Parse()

	if *where == "" {
		flag.Usage()
		os.Exit(2)
	}

	sharedlogger.Init()
	defer sharedlogger.L().Sync()

	whereF := &memField{}
	display := &memField{}
	picker := &memPicker{}
	nightsF := &memField{}

	nav := &printNavigator{base: *server}
	sub := &widget.HTTPSubmitter{BaseURL: *server}
	c := widget.New(widget.Bindings{
		Where:       whereF,
		WhenDisplay: display,
		WhenPicker:  picker,
		Nights:      nightsF,
	}, sub, nav, sharedlogger.L())

	ev := &cliEvents{}
	c.Init(ev)

	whereF.SetValue(*where)
	nightsF.SetValue(*nights)
	if *when != "" {
		picker.SetValue(*when)
		ev.pickerChange()
	}

	fmt.Printf("Searching hotels: %s, %s, %d night(s)\n", *where, display.Value(), c.Nights())
	ev.submit()
}
