package models

// 用户头衔，注册即为注册会员，admin 首次登录后升级为创始人
const (
	TitleMember  = "注册会员"
	TitleFounder = "创始人"
)

// DefaultAvatar 未填写头像时的占位图
const DefaultAvatar = "https://i.imgur.com/0rxFJnF.png"

// User 用户模型，整条记录以 JSON 存储在 user:<username> 键下
// username 一经注册不可变更、不可复用（区分大小写）
type User struct {
	Username     string `json:"username"`
	PasswordHash string `json:"passwordHash,omitempty"`
	Nickname     string `json:"nickname"`
	AvatarURL    string `json:"avatarUrl"`
	Gender       string `json:"gender"` // ♂ / ♀
	Bio          string `json:"bio"`
	Title        string `json:"title"`
	IsAdmin      bool   `json:"isAdmin"`
	FirstLogin   bool   `json:"firstLogin"`
	CreatedAt    int64  `json:"createdAt"` // epoch ms
}

// Sanitized 返回去除凭证字段的副本，所有对外响应只使用该形态
func (u *User) Sanitized() *User {
	clone := *u
	clone.PasswordHash = ""
	return &clone
}
