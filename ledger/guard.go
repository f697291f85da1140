package ledger

import (
	"chantierbook/auth"
	"chantierbook/models"
)

// Session identifies the signed-in account and its current site. It is
// created at sign-in and passed explicitly to every operation; there is no
// ambient current-user state.
type Session struct {
	AccountID string
	Role      string
	SiteID    string
}

func (s Session) isAdmin() bool { return s.Role == "admin" }

func requireAdmin(sess Session) error {
	if !sess.isAdmin() {
		return permissionErr()
	}
	return nil
}

func requireWritable(site *models.Site) error {
	if site.Locked {
		return lockedErr()
	}
	return nil
}

// ConfirmPassword is the step-up check for sensitive settings. The password
// is compared against the stored digest at the moment of the action, never
// cached from login.
func ConfirmPassword(account *models.Account, password string) error {
	if !auth.CheckPasswordHash(password, account.PasswordHash) {
		return validationErr("InvalidAdminPassword")
	}
	return nil
}

// checkActivation gates admin self-registration: when an activation
// password is configured, the supplied value must match it. No configured
// password means open admin registration.
func checkActivation(doc *models.Document, role, activation string) error {
	if role != "admin" || doc.ActivationPassword == nil {
		return nil
	}
	if *doc.ActivationPassword != activation {
		return validationErr("ActivationRequired")
	}
	return nil
}
