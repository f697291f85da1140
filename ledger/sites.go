package ledger

import (
	"github.com/google/uuid"

	"chantierbook/models"
)

// SiteInfo is the read model handed to the site selector.
type SiteInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Archived bool   `json:"archived"`
	Locked   bool   `json:"locked"`
	Current  bool   `json:"current"`
}

// ListSites returns every site of the account, archived ones included; the
// presentation layer hides archived sites from the active selector.
func (s *Service) ListSites(sess Session) ([]SiteInfo, error) {
	var out []SiteInfo
	err := s.store.View(func(doc *models.Document) error {
		acct := doc.FindAccount(sess.AccountID)
		if acct == nil {
			return validationErr("UnknownAccount")
		}
		for _, site := range acct.Sites {
			out = append(out, SiteInfo{
				ID:       site.ID,
				Name:     site.Name,
				Archived: site.Archived,
				Locked:   site.Locked,
				Current:  site.ID == sess.SiteID,
			})
		}
		return nil
	})
	return out, err
}

// SelectSite checks that the site belongs to the signed-in account before
// the session switches to it.
func (s *Service) SelectSite(sess Session, siteID string) error {
	return s.store.View(func(doc *models.Document) error {
		acct := doc.FindAccount(sess.AccountID)
		if acct == nil {
			return validationErr("UnknownAccount")
		}
		if acct.FindSite(siteID) == nil {
			return validationErr("UnknownSite")
		}
		return nil
	})
}

func (s *Service) RenameSite(sess Session, name string) error {
	if name == "" {
		return &ValidationError{Key: "InvalidInput", Field: "Name"}
	}
	return s.withSite(sess, func(acct *models.Account, site *models.Site) error {
		if err := requireWritable(site); err != nil {
			return err
		}
		site.Name = name
		return nil
	})
}

// DuplicateSite deep-copies the current site under a fresh identifier and
// a " (copie)" name suffix. Duplication itself counts as a write against
// the source site, so a locked site cannot be duplicated.
func (s *Service) DuplicateSite(sess Session) (string, error) {
	var newID string
	err := s.withSite(sess, func(acct *models.Account, site *models.Site) error {
		if err := requireWritable(site); err != nil {
			return err
		}
		dup := site.Clone()
		dup.ID = uuid.NewString()
		dup.Name = site.Name + " (copie)"
		acct.Sites = append(acct.Sites, dup)
		newID = dup.ID
		return nil
	})
	return newID, err
}

func (s *Service) ArchiveSite(sess Session) error {
	return s.withSite(sess, func(acct *models.Account, site *models.Site) error {
		if err := requireWritable(site); err != nil {
			return err
		}
		site.Archived = true
		return nil
	})
}

// RestoreAllSites un-archives every site of the account.
func (s *Service) RestoreAllSites(sess Session) error {
	return s.withSite(sess, func(acct *models.Account, site *models.Site) error {
		if err := requireWritable(site); err != nil {
			return err
		}
		for _, other := range acct.Sites {
			other.Archived = false
		}
		return nil
	})
}

// ToggleLock flips the write-lock of the current site. It is always
// permitted, locked site included: it is the unlock mechanism.
func (s *Service) ToggleLock(sess Session) (bool, error) {
	var locked bool
	err := s.withSite(sess, func(acct *models.Account, site *models.Site) error {
		site.Locked = !site.Locked
		locked = site.Locked
		return nil
	})
	return locked, err
}

// DeleteSite removes the current site outright. An account always keeps at
// least one site: deleting the last one creates a fresh default site. The
// returned id is the site the session should switch to.
func (s *Service) DeleteSite(sess Session) (string, error) {
	var nextID string
	err := s.withSite(sess, func(acct *models.Account, site *models.Site) error {
		if err := requireWritable(site); err != nil {
			return err
		}
		kept := acct.Sites[:0]
		for _, other := range acct.Sites {
			if other.ID != site.ID {
				kept = append(kept, other)
			}
		}
		acct.Sites = kept
		if len(acct.Sites) == 0 {
			acct.Sites = []*models.Site{models.NewSite(uuid.NewString(), models.DefaultSiteName)}
		}
		nextID = acct.Sites[0].ID
		return nil
	})
	return nextID, err
}

// SiteView returns a deep copy of the current site for read-only endpoints.
func (s *Service) SiteView(sess Session) (*models.Site, error) {
	var out *models.Site
	err := s.store.View(func(doc *models.Document) error {
		acct := doc.FindAccount(sess.AccountID)
		if acct == nil {
			return validationErr("UnknownAccount")
		}
		site := acct.FindSite(sess.SiteID)
		if site == nil {
			return validationErr("UnknownSite")
		}
		out = site.Clone()
		return nil
	})
	return out, err
}
