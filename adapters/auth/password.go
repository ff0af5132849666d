package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost 與原系統一致，高於套件預設值
const bcryptCost = 12

// HashPassword 以 bcrypt 雜湊密碼
func HashPassword(password string) (string, error) {
	const op = "auth.HashPassword"
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("[%s] Fail to hash password, err=%w", op, err)
	}
	return string(hash), nil
}

// VerifyPassword 比對密碼與雜湊，相符時回傳 true
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
