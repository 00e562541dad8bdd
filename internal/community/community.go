// Package community holds per-community configuration and the lazily
// populated directory cache in front of the store.
package community

// Config is one community's resolved configuration.
type Config struct {
	ID                string
	Prefix            string
	AdminRoleID       string
	OperatorChannelID string
	AnnounceChannelID string
	Timezone          string
}
