package models

// Document is the whole persisted store: every account plus the global
// configuration. It is saved and loaded as a single JSON value.
type Document struct {
	Accounts           []*Account `json:"accounts"`
	ActivationPassword *string    `json:"activation_password"`
}

func NewDocument() *Document {
	return &Document{Accounts: []*Account{}}
}

func (d *Document) FindAccount(id string) *Account {
	for _, a := range d.Accounts {
		if a.ID == id {
			return a
		}
	}
	return nil
}

type Account struct {
	ID           string  `json:"id"`
	PasswordHash string  `json:"password_hash"`
	Role         string  `json:"role"` // "admin" or "member"
	Theme        string  `json:"theme"`
	Avatar       string  `json:"avatar,omitempty"`
	Sites        []*Site `json:"sites"`
}

func (a *Account) FindSite(id string) *Site {
	for _, s := range a.Sites {
		if s.ID == id {
			return s
		}
	}
	return nil
}

type Site struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Archived     bool           `json:"archived"`
	Locked       bool           `json:"locked"`
	Budget       *Budget        `json:"budget,omitempty"`
	Materials    []Material     `json:"materials"`
	Workers      []Worker       `json:"workers"`
	Locations    []Location     `json:"locations"`
	Transactions []Transaction  `json:"transactions"`
	History      []HistoryEntry `json:"history"`
	Suggestions  Suggestions    `json:"suggestions"`
	Donor        Donor          `json:"donor"`
	Journal      string         `json:"journal,omitempty"`
}

type Budget struct {
	InitialBudget float64 `json:"initial_budget"`
	SARRate       float64 `json:"sar_rate"`
	Note          string  `json:"note,omitempty"`
}

type Material struct {
	Name     string  `json:"name"`
	Amount   float64 `json:"amount"`
	Payment  string  `json:"payment"` // "cash" or "credit"
	Date     string  `json:"date"`
	Quantity float64 `json:"quantity"`
	Category string  `json:"category,omitempty"`
}

type Worker struct {
	Name   string  `json:"name"`
	Trade  string  `json:"trade"`
	Amount float64 `json:"amount"`
	Start  string  `json:"start"`
}

type Location struct {
	Description string  `json:"description"`
	Area        string  `json:"area"`
	Surface     float64 `json:"surface"`
	Price       float64 `json:"price"`
	Paid        float64 `json:"paid"`
	Date        string  `json:"date"`
	Mode        string  `json:"mode"` // "cash" or "credit"
}

type Transaction struct {
	TargetType string  `json:"target_type"` // "diverse" marks unforeseen spend
	Target     string  `json:"target"`
	Amount     float64 `json:"amount"`
	Date       string  `json:"date"`
	Note       string  `json:"note,omitempty"`
}

type HistoryEntry struct {
	Type   string  `json:"type"`
	Detail string  `json:"detail"`
	Amount float64 `json:"amount"`
	Date   string  `json:"date"`
}

type Suggestions struct {
	Materials  []string `json:"materials"`
	Trades     []string `json:"trades"`
	Categories []string `json:"categories"`
}

type Donor struct {
	Budget *DonorBudget `json:"budget"`
	Slices []DonorSlice `json:"slices"`
}

type DonorBudget struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Rate   float64 `json:"rate"`
}

type DonorSlice struct {
	Date     string  `json:"date"`
	Project  string  `json:"project"`
	Country  string  `json:"country"`
	City     string  `json:"city"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// DefaultSiteName is given to the site created for a fresh account and to
// the replacement site created when the last remaining site is deleted.
const DefaultSiteName = "Chantier principal"

func NewSite(id, name string) *Site {
	return &Site{
		ID:           id,
		Name:         name,
		Materials:    []Material{},
		Workers:      []Worker{},
		Locations:    []Location{},
		Transactions: []Transaction{},
		History:      []HistoryEntry{},
		Suggestions:  Suggestions{Materials: []string{}, Trades: []string{}, Categories: []string{}},
		Donor:        Donor{Slices: []DonorSlice{}},
	}
}

// Clone deep-copies the site. Ledger rows are value types, so copying the
// slices is enough to make the copy fully independent of the original.
func (s *Site) Clone() *Site {
	c := *s
	if s.Budget != nil {
		b := *s.Budget
		c.Budget = &b
	}
	c.Materials = append([]Material(nil), s.Materials...)
	c.Workers = append([]Worker(nil), s.Workers...)
	c.Locations = append([]Location(nil), s.Locations...)
	c.Transactions = append([]Transaction(nil), s.Transactions...)
	c.History = append([]HistoryEntry(nil), s.History...)
	c.Suggestions = Suggestions{
		Materials:  append([]string(nil), s.Suggestions.Materials...),
		Trades:     append([]string(nil), s.Suggestions.Trades...),
		Categories: append([]string(nil), s.Suggestions.Categories...),
	}
	c.Donor = Donor{Slices: append([]DonorSlice(nil), s.Donor.Slices...)}
	if s.Donor.Budget != nil {
		db := *s.Donor.Budget
		c.Donor.Budget = &db
	}
	return &c
}

func (a *Account) Clone() *Account {
	c := *a
	c.Sites = make([]*Site, len(a.Sites))
	for i, s := range a.Sites {
		c.Sites[i] = s.Clone()
	}
	return &c
}

func (d *Document) Clone() *Document {
	c := &Document{Accounts: make([]*Account, len(d.Accounts))}
	for i, a := range d.Accounts {
		c.Accounts[i] = a.Clone()
	}
	if d.ActivationPassword != nil {
		v := *d.ActivationPassword
		c.ActivationPassword = &v
	}
	return c
}
