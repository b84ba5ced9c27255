package domain

// The superuser is a hardcoded identity, not a stored account. It is
// recognized by its sentinel subject id; no row for it exists in any table.
const (
	SuperuserSubject = "admin-special"
	SuperuserEmail   = "admin"
	SuperuserName    = "Administrador"
)

// IsSuperuser reports whether a token subject is the superuser sentinel.
// Every elevated-scope decision goes through this single check.
func IsSuperuser(subject string) bool {
	return subject == SuperuserSubject
}
