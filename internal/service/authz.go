package service

import "parking_management/internal/domain"

// assertOwnerOrAdmin gates mutating operations on owned resources: the
// caller must either own the resource or hold the ADMIN role.
func assertOwnerOrAdmin(p domain.Principal, ownerUserID int64) error {
	if p.IsAdmin() || p.UserID == ownerUserID {
		return nil
	}
	return ErrNotOwner
}
