package domain

import (
	"strings"
	"unicode"
)

type Role string

const (
	RoleUser  Role = "USUARIO"
	RoleAdmin Role = "ADMIN"
)

// User es el registro de sesión que entrega el backend en /auth/login.
// Se guarda tal cual bajo la clave userData y se consume como dato opaco.
type User struct {
	ID         int64  `json:"id,omitempty"`
	Nombre     string `json:"nombre"`
	Apellido   string `json:"apellido,omitempty"`
	Email      string `json:"email"`
	Celular    int64  `json:"celular,omitempty"`
	Contrasena string `json:"contrasena,omitempty"`
	Rol        Role   `json:"rol,omitempty"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Rol == RoleAdmin
}

// FullName capitaliza nombre y apellido para la barra de navegación.
func (u *User) FullName() string {
	full := capitalize(u.Nombre)
	if ap := capitalize(u.Apellido); ap != "" {
		if full != "" {
			full += " "
		}
		full += ap
	}
	return full
}

func capitalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	r := []rune(strings.ToLower(s))
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
