package model

// Role tags the purpose of a scratch file inside one job's namespace.
type Role string

const (
	RoleNarration Role = "narration"
	RoleVideo1    Role = "v1"
	RoleVideo2    Role = "v2"
	RoleVideo3    Role = "v3"
	RoleConcat    Role = "concat"
	RoleBase      Role = "base"
	RoleFinal     Role = "final"
)

// VideoRoles lists the input clip roles in concatenation order.
var VideoRoles = []Role{RoleVideo1, RoleVideo2, RoleVideo3}
