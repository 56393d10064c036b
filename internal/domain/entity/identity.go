package entity

// Identity es el usuario que ejecuta una mutación; se adjunta a cada escritura.
type Identity struct {
	UserID   string
	UserName string
}
