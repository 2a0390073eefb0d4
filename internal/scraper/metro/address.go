package metro

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
)

// SelectAddress picks the first pickup store in city through the header address dialog.
func (s *MetroScraper) SelectAddress(ctx context.Context, page *rod.Page, city string) error {
	return s.selectAddress(ctx, rodActions{page: page, wait: s.conf.ImplicitWait}, city)
}

func (s *MetroScraper) selectAddress(ctx context.Context, page pageActions, city string) error {
	s.log.Infof("Selecting address in city: %s", city)

	if err := page.Click(addressButtonSel); err != nil {
		return fmt.Errorf("address button: %w", err)
	}
	s.log.Debugf("Address button clicked")

	// The pickup tab has no distinguishing class, only its position.
	if err := page.ClickNth(deliveryTabSel, pickupTabIndex); err != nil {
		return fmt.Errorf("pickup tab: %w", err)
	}
	s.log.Debugf("Pickup button clicked")

	if err := page.Click(resetLinkSel); err != nil {
		return fmt.Errorf("reset button: %w", err)
	}
	s.log.Debugf("Reset button clicked")

	if err := page.Input(cityInputSel, city); err != nil {
		return fmt.Errorf("city input %q: %w", city, err)
	}
	s.log.Debugf("City input: %s", city)
	if err := pause(ctx, s.conf.Delays.CityInput); err != nil {
		return err
	}

	if err := page.Click(cityItemSel); err != nil {
		return fmt.Errorf("city item: %w", err)
	}
	s.log.Debugf("City item clicked")
	if err := pause(ctx, s.conf.Delays.CityItem); err != nil {
		return err
	}

	if err := page.ClickText(selectButtonSel, selectButtonText); err != nil {
		return fmt.Errorf("select button: %w", err)
	}
	s.log.Debugf("Select button clicked")
	if err := pause(ctx, s.conf.Delays.SelectDone); err != nil {
		return err
	}

	s.log.Infof("Address selection completed for %s", city)
	return nil
}
