package metro

// CSS selectors for the online.metro-cc.ru markup. Class names carry hashed suffixes,
// so everything matches on a substring.
const (
	addressButtonSel = `button[class*='header-address__receive-button']`
	deliveryTabSel   = `div[class*='delivery__tab']`
	resetLinkSel     = `span[class*='reset-link']`
	cityInputSel     = `input[label*='Введите название города']`
	cityItemSel      = `div[class*='city-item']`
	selectButtonSel  = `button[type*='button'] span`
	selectButtonText = `Выбрать`
	showMoreSel      = `button[class*='subcategory-or-type__load-more']`

	productItemSel      = `div[class*='subcategory-or-type__products-item']`
	productPhotoLinkSel = `a[class*='product-card-photo__link']`
	soldOutMarker       = `Раскупили`

	productArticleSel      = `p[itemprop*='productID']`
	productNameSel         = `h1[class*='product-page-content__product-name']`
	productPromoPriceSel   = `div[class*='product-unit-prices__actual-wrapper']`
	productRegularPriceSel = `div[class*='product-unit-prices__old-wrapper']`
	productAttributeSel    = `a[class*='product-attributes__list-item']`
)

// pickupTabIndex is the position of the "pickup" tab among the delivery tabs.
const pickupTabIndex = 2

// brandAttributeIndex is the position of the brand link in the attribute list.
const brandAttributeIndex = 3
