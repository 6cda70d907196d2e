package modules

// ModuleInfo describes one entry in the module catalog.
type ModuleInfo struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// Catalog is the fixed set of modules the platform offers. Lookup is by
// module key; iteration follows the catalog's display order.
type Catalog struct {
	modules []ModuleInfo
	byKey   map[string]ModuleInfo
}

// NewCatalog builds a catalog from an ordered module list.
func NewCatalog(modules []ModuleInfo) *Catalog {
	byKey := make(map[string]ModuleInfo, len(modules))
	for _, m := range modules {
		byKey[m.Key] = m
	}
	return &Catalog{modules: modules, byKey: byKey}
}

// Modules returns the catalog entries in display order. The returned slice
// must not be modified.
func (c *Catalog) Modules() []ModuleInfo {
	return c.modules
}

// Has reports whether key names a catalog module.
func (c *Catalog) Has(key string) bool {
	_, ok := c.byKey[key]
	return ok
}

// Get returns the catalog entry for key.
func (c *Catalog) Get(key string) (ModuleInfo, bool) {
	m, ok := c.byKey[key]
	return m, ok
}

// Keys returns all module keys in display order.
func (c *Catalog) Keys() []string {
	keys := make([]string, len(c.modules))
	for i, m := range c.modules {
		keys[i] = m.Key
	}
	return keys
}

// Len returns the number of catalog modules.
func (c *Catalog) Len() int {
	return len(c.modules)
}

// DefaultCatalog returns the platform module catalog.
func DefaultCatalog() *Catalog {
	return NewCatalog([]ModuleInfo{
		{Key: "dashboard", Name: "Dashboard", Icon: "fa-tachometer-alt"},
		{Key: "select_organization", Name: "Select Organization", Icon: "fa-building"},
		{Key: "clients", Name: "Clients", Icon: "fa-users"},
		{Key: "discounts", Name: "Discounts", Icon: "fa-tags"},
		{Key: "invoices", Name: "Invoices", Icon: "fa-file-invoice-dollar"},
		{Key: "items", Name: "Items", Icon: "fa-box"},
		{Key: "locations", Name: "Locations", Icon: "fa-map-marker-alt"},
		{Key: "payment_methods", Name: "Payment Methods", Icon: "fa-credit-card"},
		{Key: "providers", Name: "Providers", Icon: "fa-user-md"},
		{Key: "sales_reps", Name: "Sales Reps", Icon: "fa-user-tie"},
		{Key: "subscriptions", Name: "Subscriptions", Icon: "fa-sync-alt"},
		{Key: "support_requests", Name: "Support Requests", Icon: "fa-headset"},
		{Key: "reports", Name: "Reports", Icon: "fa-chart-bar"},
		{Key: "credit_grants", Name: "Credit Grants", Icon: "fa-coins"},
		{Key: "fuze_ai", Name: "Fuze AI Assistant", Icon: "fa-robot"},
		{Key: "billing_admin", Name: "Billing & Payments Admin", Icon: "fa-cash-register"},
	})
}
