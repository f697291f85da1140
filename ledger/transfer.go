package ledger

import "chantierbook/models"

// Export returns a deep copy of the whole document, the same shape the
// import endpoint accepts back.
func (s *Service) Export() *models.Document {
	return s.store.Snapshot()
}

// Import replaces the entire store with the given document. The caller must
// end the current session: every account is re-authenticated against the
// imported digests.
func (s *Service) Import(doc *models.Document) error {
	if doc == nil {
		return validationErr("InvalidInput")
	}
	if err := s.store.Replace(doc); err != nil {
		return err
	}
	s.log.WithField("accounts", len(doc.Accounts)).Info("document imported, sessions invalidated")
	return nil
}
