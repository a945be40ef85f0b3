package utils

import (
	"regexp"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

var (
	usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)
	avatarRe   = regexp.MustCompile(`^https?://.+`)
)

// HashPassword 使用 bcrypt 对密码进行哈希
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

// CheckPassword 校验明文密码与存储哈希是否匹配
func CheckPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}

// ValidateUsername 验证用户名格式（3-20个字符，字母数字下划线，区分大小写）
func ValidateUsername(username string) bool {
	return usernameRe.MatchString(username)
}

// ValidatePassword 验证密码强度（至少6个字符）
func ValidatePassword(password string) bool {
	return len(password) >= 6
}

// ValidateNickname 验证昵称长度（2-20个字符，按 unicode 计数）
func ValidateNickname(nickname string) bool {
	n := utf8.RuneCountInString(nickname)
	return n >= 2 && n <= 20
}

// ValidateAvatarURL 验证头像链接（http/https）
func ValidateAvatarURL(avatar string) bool {
	return avatarRe.MatchString(avatar)
}

// ValidateGender 性别只接受 ♂ / ♀
func ValidateGender(gender string) bool {
	return gender == "♂" || gender == "♀"
}
