package collection

import "fmt"

// Event is a pagination notification emitted by a collection.
// The concrete types are FetchStarted, PageComplete and ShowingPage.
type Event interface {
	isEvent()
	fmt.Stringer
}

// FetchStarted is emitted right before a request goes out
type FetchStarted struct{}

// PageComplete is emitted after every parsed response, empty or not
type PageComplete struct{}

// ShowingPage is emitted when a parsed response leaves the collection
// holding more records than the server reported
type ShowingPage struct {
	Page int
}

func (FetchStarted) isEvent() {}
func (PageComplete) isEvent() {}
func (ShowingPage) isEvent()  {}

func (FetchStarted) String() string  { return "page:fetch" }
func (PageComplete) String() string  { return "page:complete" }
func (e ShowingPage) String() string { return fmt.Sprintf("page:showing %d", e.Page) }

// Observer receives events synchronously on the goroutine that fetched
type Observer func(Event)
