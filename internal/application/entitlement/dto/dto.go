package dto

type LimitsDTO struct {
	OwnerType    string `json:"owner_type"`
	OwnerID      uint   `json:"owner_id"`
	PlanID       *uint  `json:"plan_id"`
	PlanName     string `json:"plan_name"`
	MaxMembers   int    `json:"max_members"`
	MaxStorageMB int    `json:"max_storage_mb"`
}

type StorageCheckDTO struct {
	Allowed   bool    `json:"allowed"`
	CurrentMB float64 `json:"current"`
	LimitMB   int     `json:"limit"`
}

type MemberCheckDTO struct {
	Allowed    bool  `json:"allowed"`
	Current    int64 `json:"current"`
	MaxMembers int   `json:"max_members"`
}

// SetStorageUsageRequest is sent by the file service after uploads and deletes.
type SetStorageUsageRequest struct {
	OwnerType string  `json:"owner_type" binding:"required,oneof=team personal"`
	OwnerID   uint    `json:"owner_id" binding:"required"`
	UsedMB    float64 `json:"used_mb" binding:"gte=0"`
}
