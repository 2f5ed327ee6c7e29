package store

// Account represents one linked account of the sender/recipient pair.
// Ref is the credential reference used to locate the MTProto session file;
// exactly one account may be primary (the sender).
type Account struct {
	ID        int64
	Ref       string
	Username  string
	Primary   bool
	CreatedAt int64
}

// Options is the single row of sync feature flags. The last three are
// reserved flags carried over from older profile databases; no engine
// binds to them.
type Options struct {
	Favorites    bool
	ProfileName  bool
	ProfileMedia bool
	Channels     bool
	Privacy      bool
	Secure       bool
	Stickers     bool
	Bots         bool
}

// Enabled reports whether at least one engine-bound flag is set.
func (o Options) Enabled() bool {
	return o.Favorites || o.ProfileName || o.ProfileMedia || o.Channels || o.Privacy
}
