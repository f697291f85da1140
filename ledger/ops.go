package ledger

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"chantierbook/models"
	"chantierbook/store"
)

// Service implements every mutation operation on the record store. Each
// operation validates its input, checks the access guards, applies the
// change and appends a history entry, all inside a single store mutation so
// the document is flushed exactly once per successful operation.
type Service struct {
	store    *store.Store
	log      *logrus.Logger
	validate *validator.Validate
	now      func() time.Time
}

func NewService(st *store.Store, log *logrus.Logger) *Service {
	return &Service{
		store:    st,
		log:      log,
		validate: validator.New(),
		now:      time.Now,
	}
}

const dateLayout = "2006-01-02"

func (s *Service) today() string { return s.now().Format(dateLayout) }

func (s *Service) checkInput(in any) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}
	if fields, ok := err.(validator.ValidationErrors); ok && len(fields) > 0 {
		return &ValidationError{Key: "InvalidInput", Field: fields[0].Field()}
	}
	return &ValidationError{Key: "InvalidInput"}
}

// withSite resolves the session's account and current site and runs fn on
// them inside a store mutation.
func (s *Service) withSite(sess Session, fn func(acct *models.Account, site *models.Site) error) error {
	return s.store.Mutate(func(doc *models.Document) error {
		acct := doc.FindAccount(sess.AccountID)
		if acct == nil {
			return validationErr("UnknownAccount")
		}
		site := acct.FindSite(sess.SiteID)
		if site == nil {
			return validationErr("UnknownSite")
		}
		return fn(acct, site)
	})
}

func addHistory(site *models.Site, entryType, detail string, amount float64, date string) {
	site.History = append(site.History, models.HistoryEntry{
		Type:   entryType,
		Detail: detail,
		Amount: amount,
		Date:   date,
	})
}

// Budget

type BudgetInput struct {
	InitialBudget float64 `json:"initial_budget" validate:"gte=0"`
	SARRate       float64 `json:"sar_rate" validate:"gte=0"`
	Note          string  `json:"note"`
}

func (s *Service) SetBudget(sess Session, in BudgetInput) error {
	if err := s.checkInput(in); err != nil {
		return err
	}
	return s.withSite(sess, func(acct *models.Account, site *models.Site) error {
		if err := requireAdmin(sess); err != nil {
			return err
		}
		if err := requireWritable(site); err != nil {
			return err
		}
		site.Budget = &models.Budget{InitialBudget: in.InitialBudget, SARRate: in.SARRate, Note: in.Note}
		addHistory(site, "budget", "Budget initial", in.InitialBudget, s.today())
		return nil
	})
}

// SetSARRate overrides the exchange rate alone. It is a sensitive setting:
// admin role plus a freshly confirmed password are required.
func (s *Service) SetSARRate(sess Session, rate float64, password string) error {
	if rate < 0 {
		return &ValidationError{Key: "InvalidInput", Field: "SARRate"}
	}
	if rate == 0 {
		rate = 1
	}
	return s.withSite(sess, func(acct *models.Account, site *models.Site) error {
		if err := requireAdmin(sess); err != nil {
			return err
		}
		if err := ConfirmPassword(acct, password); err != nil {
			return err
		}
		if err := requireWritable(site); err != nil {
			return err
		}
		if site.Budget == nil {
			site.Budget = &models.Budget{}
		}
		site.Budget.SARRate = rate
		return nil
	})
}

// Ledger rows. All four ledgers are append-only: rows carry no identifier
// and there is no edit or delete operation, matching the audit-friendly
// contract of the original books.

type MaterialInput struct {
	Name     string  `json:"name" validate:"required"`
	Amount   float64 `json:"amount" validate:"gte=0"`
	Payment  string  `json:"payment" validate:"required,oneof=cash credit"`
	Date     string  `json:"date" validate:"required"`
	Quantity float64 `json:"quantity" validate:"gte=0"`
	Category string  `json:"category"`
}

func (s *Service) AddMaterial(sess Session, in MaterialInput) error {
	if err := s.checkInput(in); err != nil {
		return err
	}
	return s.withSite(sess, func(acct *models.Account, site *models.Site) error {
		if err := requireWritable(site); err != nil {
			return err
		}
		site.Materials = append(site.Materials, models.Material{
			Name:     in.Name,
			Amount:   in.Amount,
			Payment:  in.Payment,
			Date:     in.Date,
			Quantity: in.Quantity,
			Category: in.Category,
		})
		addHistory(site, "material", in.Name, in.Amount, in.Date)
		return nil
	})
}

type WorkerInput struct {
	Name   string  `json:"name" validate:"required"`
	Trade  string  `json:"trade" validate:"required"`
	Amount float64 `json:"amount" validate:"gte=0"`
	Start  string  `json:"start" validate:"required"`
}

func (s *Service) AddWorker(sess Session, in WorkerInput) error {
	if err := s.checkInput(in); err != nil {
		return err
	}
	return s.withSite(sess, func(acct *models.Account, site *models.Site) error {
		if err := requireWritable(site); err != nil {
			return err
		}
		site.Workers = append(site.Workers, models.Worker{
			Name:   in.Name,
			Trade:  in.Trade,
			Amount: in.Amount,
			Start:  in.Start,
		})
		addHistory(site, "worker", in.Name, in.Amount, in.Start)
		return nil
	})
}

type LocationInput struct {
	Description string  `json:"description" validate:"required"`
	Area        string  `json:"area"`
	Surface     float64 `json:"surface" validate:"gte=0"`
	Price       float64 `json:"price" validate:"gte=0"`
	Paid        float64 `json:"paid" validate:"gte=0"`
	Date        string  `json:"date" validate:"required"`
	Mode        string  `json:"mode" validate:"required,oneof=cash credit"`
}

func (s *Service) AddLocation(sess Session, in LocationInput) error {
	if err := s.checkInput(in); err != nil {
		return err
	}
	return s.withSite(sess, func(acct *models.Account, site *models.Site) error {
		if err := requireWritable(site); err != nil {
			return err
		}
		site.Locations = append(site.Locations, models.Location{
			Description: in.Description,
			Area:        in.Area,
			Surface:     in.Surface,
			Price:       in.Price,
			Paid:        in.Paid,
			Date:        in.Date,
			Mode:        in.Mode,
		})
		addHistory(site, "location", in.Description, in.Price, in.Date)
		return nil
	})
}

type TransactionInput struct {
	TargetType string  `json:"target_type" validate:"required"`
	Target     string  `json:"target" validate:"required"`
	Amount     float64 `json:"amount" validate:"gte=0"`
	Date       string  `json:"date" validate:"required"`
	Note       string  `json:"note"`
}

func (s *Service) AddTransaction(sess Session, in TransactionInput) error {
	if err := s.checkInput(in); err != nil {
		return err
	}
	return s.withSite(sess, func(acct *models.Account, site *models.Site) error {
		if err := requireWritable(site); err != nil {
			return err
		}
		site.Transactions = append(site.Transactions, models.Transaction{
			TargetType: in.TargetType,
			Target:     in.Target,
			Amount:     in.Amount,
			Date:       in.Date,
			Note:       in.Note,
		})
		addHistory(site, "transaction", in.TargetType+" - "+in.Target, in.Amount, in.Date)
		return nil
	})
}

// Donor funding

type DonorBudgetInput struct {
	Name   string  `json:"name" validate:"required"`
	Amount float64 `json:"amount" validate:"gte=0"`
	Rate   float64 `json:"rate" validate:"gte=0"`
}

func (s *Service) SetDonorBudget(sess Session, in DonorBudgetInput) error {
	if err := s.checkInput(in); err != nil {
		return err
	}
	return s.withSite(sess, func(acct *models.Account, site *models.Site) error {
		if err := requireWritable(site); err != nil {
			return err
		}
		site.Donor.Budget = &models.DonorBudget{Name: in.Name, Amount: in.Amount, Rate: in.Rate}
		return nil
	})
}

type DonorSliceInput struct {
	Date     string  `json:"date" validate:"required"`
	Project  string  `json:"project" validate:"required"`
	Country  string  `json:"country"`
	City     string  `json:"city"`
	Amount   float64 `json:"amount" validate:"gte=0"`
	Currency string  `json:"currency"`
}

// AddDonorSlice rejects future-dated slices. The date check deliberately
// runs before the write-lock check.
func (s *Service) AddDonorSlice(sess Session, in DonorSliceInput) error {
	if err := s.checkInput(in); err != nil {
		return err
	}
	if _, err := time.Parse(dateLayout, in.Date); err != nil {
		return &ValidationError{Key: "InvalidDate", Field: "Date"}
	}
	if in.Date > s.today() {
		return validationErr("DateInFuture")
	}
	return s.withSite(sess, func(acct *models.Account, site *models.Site) error {
		if err := requireWritable(site); err != nil {
			return err
		}
		site.Donor.Slices = append(site.Donor.Slices, models.DonorSlice{
			Date:     in.Date,
			Project:  in.Project,
			Country:  in.Country,
			City:     in.City,
			Amount:   in.Amount,
			Currency: in.Currency,
		})
		return nil
	})
}

// Site-level free text

type SuggestionsInput struct {
	Material string `json:"material"`
	Trade    string `json:"trade"`
	Category string `json:"category"`
}

func (s *Service) SaveSuggestions(sess Session, in SuggestionsInput) error {
	return s.withSite(sess, func(acct *models.Account, site *models.Site) error {
		if err := requireWritable(site); err != nil {
			return err
		}
		if in.Material != "" {
			site.Suggestions.Materials = append(site.Suggestions.Materials, in.Material)
		}
		if in.Trade != "" {
			site.Suggestions.Trades = append(site.Suggestions.Trades, in.Trade)
		}
		if in.Category != "" {
			site.Suggestions.Categories = append(site.Suggestions.Categories, in.Category)
		}
		return nil
	})
}

func (s *Service) UpdateJournal(sess Session, text string) error {
	return s.withSite(sess, func(acct *models.Account, site *models.Site) error {
		if err := requireWritable(site); err != nil {
			return err
		}
		site.Journal = text
		return nil
	})
}
