package models

// All returns every model managed by migrations, in dependency order
func All() []interface{} {
	return []interface{}{
		&Profile{},
		&Post{},
		&Follow{},
		&Like{},
		&Comment{},
		&Notification{},
		&AdminLog{},
		&PasswordReset{},
	}
}
