package security

import "golang.org/x/crypto/bcrypt"

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// BcryptVerifier : проверка пароля против bcrypt хэша
type BcryptVerifier struct{}

func (BcryptVerifier) Verify(plain, hashed string) bool {
	return CheckPassword(plain, hashed)
}
