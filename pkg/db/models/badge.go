package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/fooddealsberlin/backend/pkg/enums"
)

// Badge is an achievement definition. RequirementType names the profile
// statistic the badge watches and RequirementValue the threshold that earns it.
type Badge struct {
	ID               uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name             string                 `gorm:"column:name;not null;uniqueIndex"`
	Description      *string                `gorm:"column:description"`
	IconName         string                 `gorm:"column:icon_name;not null"`
	RequirementType  enums.BadgeRequirement `gorm:"column:requirement_type;not null"`
	RequirementValue int                    `gorm:"column:requirement_value;not null"`
	CreatedAt        time.Time              `gorm:"column:created_at;autoCreateTime"`
}
