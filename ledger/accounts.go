package ledger

import (
	"github.com/google/uuid"

	"chantierbook/auth"
	"chantierbook/models"
)

type RegisterInput struct {
	ID         string `json:"id" validate:"required"`
	Password   string `json:"password" validate:"required"`
	Confirm    string `json:"confirm"`
	Role       string `json:"role" validate:"required,oneof=admin member"`
	Activation string `json:"activation"`
}

// Register creates a new account. Admin self-registration is additionally
// gated by the global activation password when one is configured.
func (s *Service) Register(in RegisterInput) error {
	if err := s.checkInput(in); err != nil {
		return err
	}
	if in.Password != in.Confirm {
		return validationErr("PasswordMismatch")
	}
	if err := auth.ValidatePassword(in.Password); err != nil {
		return validationErr("PasswordTooShort")
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return err
	}
	return s.store.Mutate(func(doc *models.Document) error {
		if err := checkActivation(doc, in.Role, in.Activation); err != nil {
			return err
		}
		if doc.FindAccount(in.ID) != nil {
			return validationErr("IdentifierTaken")
		}
		doc.Accounts = append(doc.Accounts, &models.Account{
			ID:           in.ID,
			PasswordHash: hash,
			Role:         in.Role,
			Theme:        "clair",
			Sites:        []*models.Site{},
		})
		return nil
	})
}

// Login checks the credentials and opens a session on the account's first
// site, creating the default site for an account that has none yet.
func (s *Service) Login(id, password string) (Session, error) {
	var sess Session
	err := s.store.Mutate(func(doc *models.Document) error {
		acct := doc.FindAccount(id)
		// Timing attack mitigation: always run one hash comparison.
		targetHash := auth.DummyHash
		if acct != nil {
			targetHash = acct.PasswordHash
		}
		if !auth.CheckPasswordHash(password, targetHash) || acct == nil {
			return validationErr("InvalidCredentials")
		}
		if len(acct.Sites) == 0 {
			acct.Sites = []*models.Site{models.NewSite(uuid.NewString(), models.DefaultSiteName)}
		}
		sess = Session{AccountID: acct.ID, Role: acct.Role, SiteID: acct.Sites[0].ID}
		return nil
	})
	return sess, err
}

type AccountUpdateInput struct {
	NewID       string `json:"new_id"`
	NewPassword string `json:"new_password"`
}

// UpdateAccount renames the identifier and/or replaces the password. The
// returned id is the account's identifier afterwards, so the caller can
// refresh the session.
func (s *Service) UpdateAccount(sess Session, in AccountUpdateInput) (string, error) {
	newID := sess.AccountID
	err := s.store.Mutate(func(doc *models.Document) error {
		acct := doc.FindAccount(sess.AccountID)
		if acct == nil {
			return validationErr("UnknownAccount")
		}
		if in.NewID != "" && in.NewID != acct.ID {
			if doc.FindAccount(in.NewID) != nil {
				return validationErr("IdentifierTaken")
			}
			acct.ID = in.NewID
			newID = in.NewID
		}
		if in.NewPassword != "" {
			if err := auth.ValidatePassword(in.NewPassword); err != nil {
				return validationErr("PasswordTooShort")
			}
			hash, err := auth.HashPassword(in.NewPassword)
			if err != nil {
				return err
			}
			acct.PasswordHash = hash
		}
		return nil
	})
	return newID, err
}

// ToggleTheme flips between the light and dark preference.
func (s *Service) ToggleTheme(sess Session) (string, error) {
	var theme string
	err := s.store.Mutate(func(doc *models.Document) error {
		acct := doc.FindAccount(sess.AccountID)
		if acct == nil {
			return validationErr("UnknownAccount")
		}
		if acct.Theme == "sombre" {
			acct.Theme = "clair"
		} else {
			acct.Theme = "sombre"
		}
		theme = acct.Theme
		return nil
	})
	return theme, err
}

// SetAvatar stores the avatar image as a data URL string.
func (s *Service) SetAvatar(sess Session, dataURL string) error {
	return s.store.Mutate(func(doc *models.Document) error {
		acct := doc.FindAccount(sess.AccountID)
		if acct == nil {
			return validationErr("UnknownAccount")
		}
		acct.Avatar = dataURL
		return nil
	})
}

// SetActivationPassword updates the global admin-registration gate. An
// empty value clears it, reopening admin registration.
func (s *Service) SetActivationPassword(sess Session, value string) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	return s.store.Mutate(func(doc *models.Document) error {
		if value == "" {
			doc.ActivationPassword = nil
		} else {
			doc.ActivationPassword = &value
		}
		return nil
	})
}

// AccountView is the read model of the signed-in account.
type AccountView struct {
	ID     string `json:"id"`
	Role   string `json:"role"`
	Theme  string `json:"theme"`
	Avatar string `json:"avatar,omitempty"`
}

func (s *Service) Account(sess Session) (AccountView, error) {
	var out AccountView
	err := s.store.View(func(doc *models.Document) error {
		acct := doc.FindAccount(sess.AccountID)
		if acct == nil {
			return validationErr("UnknownAccount")
		}
		out = AccountView{ID: acct.ID, Role: acct.Role, Theme: acct.Theme, Avatar: acct.Avatar}
		return nil
	})
	return out, err
}
