package valueobjects

// OwnerType tells whether a subscription belongs to a team or a single member.
type OwnerType string

const (
	OwnerTypeTeam     OwnerType = "team"
	OwnerTypePersonal OwnerType = "personal"
)

func (o OwnerType) String() string {
	return string(o)
}

func (o OwnerType) IsValid() bool {
	return o == OwnerTypeTeam || o == OwnerTypePersonal
}
