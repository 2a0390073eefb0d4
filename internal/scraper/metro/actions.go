package metro

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// errElementNotFound is returned when nothing matches within the implicit wait.
var errElementNotFound = errors.New("element not found")

// pageActions are the page interactions the address dialog and the listing need.
type pageActions interface {
	Click(selector string) error
	ClickNth(selector string, index int) error
	ClickText(selector, text string) error
	Input(selector, text string) error
}

// rodActions drives a rod page, waiting up to wait for every element.
type rodActions struct {
	page *rod.Page
	wait time.Duration
}

func (r rodActions) element(selector string) (*rod.Element, error) {
	el, err := r.page.Timeout(r.wait).Element(selector)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errElementNotFound, selector, err)
	}
	return el.CancelTimeout(), nil
}

func (r rodActions) Click(selector string) error {
	el, err := r.element(selector)
	if err != nil {
		return err
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

func (r rodActions) ClickNth(selector string, index int) error {
	if _, err := r.element(selector); err != nil {
		return err
	}
	els, err := r.page.Elements(selector)
	if err != nil {
		return err
	}
	if len(els) <= index {
		return fmt.Errorf("%w: %s #%d of %d", errElementNotFound, selector, index, len(els))
	}
	return els[index].Click(proto.InputMouseButtonLeft, 1)
}

func (r rodActions) ClickText(selector, text string) error {
	el, err := r.page.Timeout(r.wait).ElementR(selector, text)
	if err != nil {
		return fmt.Errorf("%w: %s %q: %v", errElementNotFound, selector, text, err)
	}
	return el.CancelTimeout().Click(proto.InputMouseButtonLeft, 1)
}

func (r rodActions) Input(selector, text string) error {
	el, err := r.element(selector)
	if err != nil {
		return err
	}
	return el.Input(text)
}
