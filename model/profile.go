package model

// ProfileSource 资料来源
type ProfileSource string

const (
	ProfileSourceLive     ProfileSource = "live"     // users 表中的实时资料
	ProfileSourceSnapshot ProfileSource = "snapshot" // contacts 表中冻结的快照
)

// ProfileView 只读资料视图，屏蔽实时资料与快照的差异
type ProfileView interface {
	Source() ProfileSource
	Wallet() string
	Username() string
	DisplayName() string
	Country() string
	CountryCode() string
	NativeLanguages() []string
	LearningLanguages() []string
	PictureURL() string
}

// LiveProfile 基于 User 记录
type LiveProfile struct {
	User *User
}

func (p LiveProfile) Source() ProfileSource { return ProfileSourceLive }
func (p LiveProfile) Wallet() string { return p.User.WalletAddress }
func (p LiveProfile) Username() string { return p.User.Username }
func (p LiveProfile) DisplayName() string { return p.User.Name }
func (p LiveProfile) Country() string { return p.User.Country }
func (p LiveProfile) CountryCode() string { return p.User.CountryCode }
func (p LiveProfile) NativeLanguages() []string { return nonNil(p.User.NativeLanguages) }
func (p LiveProfile) LearningLanguages() []string { return nonNil(p.User.LearningLanguages) }
func (p LiveProfile) PictureURL() string { return deref(p.User.ProfilePictureURL) }

// FrozenProfile 基于联系人快照
type FrozenProfile struct {
	WalletAddress string
	Data          ContactSnapshot
}

func (p FrozenProfile) Source() ProfileSource { return ProfileSourceSnapshot }
func (p FrozenProfile) Wallet() string { return p.WalletAddress }
func (p FrozenProfile) Username() string { return p.Data.Username }
func (p FrozenProfile) DisplayName() string { return p.Data.Name }
func (p FrozenProfile) Country() string { return p.Data.Country }
func (p FrozenProfile) CountryCode() string { return p.Data.CountryCode }
func (p FrozenProfile) NativeLanguages() []string { return nonNil(p.Data.NativeLanguages) }
func (p FrozenProfile) LearningLanguages() []string { return nonNil(p.Data.LearningLanguages) }
func (p FrozenProfile) PictureURL() string { return deref(p.Data.ProfilePictureURL) }

// Profile 返回联系人对应的资料视图
func (v ContactView) Profile() ProfileView {
	return FrozenProfile{WalletAddress: v.ContactWallet, Data: v.ContactData}
}

// Profile 返回用户的实时资料视图
func (u *User) Profile() ProfileView {
	return LiveProfile{User: u}
}

// SnapshotOf 按资料视图生成联系人快照
func SnapshotOf(p ProfileView) ContactSnapshot {
	snap := ContactSnapshot{
		Username:          p.Username(),
		Name:              p.DisplayName(),
		Country:           p.Country(),
		CountryCode:       p.CountryCode(),
		NativeLanguages:   p.NativeLanguages(),
		LearningLanguages: p.LearningLanguages(),
	}
	if url := p.PictureURL(); url != "" {
		snap.ProfilePictureURL = &url
	}
	return snap
}

// SenderName 通知中展示的名字
func SenderName(p ProfileView) string {
	if p == nil {
		return "Someone"
	}
	if name := p.DisplayName(); name != "" {
		return name
	}
	if username := p.Username(); username != "" {
		return username
	}
	return "Someone"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
