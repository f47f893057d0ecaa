package domain

import (
	"time"
)

// User roles
const (
	RoleStandard = "STANDARD"
	RoleAdmin    = "ADMIN"
)

type SysConfig struct {
	ID        int64     `json:"id,string" form:"id"`
	Sort      int       `json:"sort" form:"sort"`
	Type      string    `gorm:"index" json:"type" form:"type"`
	Name      string    `gorm:"index" json:"name" form:"name"`
	Value     string    `json:"value" form:"value"`
	Remark    string    `json:"remark" form:"remark"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (SysConfig) TableName() string {
	return "sys_config"
}

// SysUser is a platform account. Credits meter paid pipeline stages and must
// never be observed below zero.
type SysUser struct {
	ID        int64     `json:"id,string" form:"id"`
	Email     string    `gorm:"uniqueIndex;size:256" json:"email" form:"email"`
	Password  string    `json:"-" form:"-"`
	Role      string    `gorm:"size:32;default:STANDARD" json:"role" form:"role"`
	Credits   int64     `gorm:"not null;default:0" json:"credits" form:"credits"`
	Status    string    `gorm:"size:32" json:"status" form:"status"`
	LastLogin time.Time `json:"last_login"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (SysUser) TableName() string {
	return "sys_user"
}

func (u SysUser) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// SysUserLog records auth and admin actions for auditing.
type SysUserLog struct {
	ID        int64     `json:"id,string"`
	Username  string    `json:"username"`
	UserIp    string    `json:"user_ip"`
	OptAction string    `json:"opt_action"`
	OptDesc   string    `json:"opt_desc"`
	OptTime   time.Time `json:"opt_time"`
}

// TableName Specify table name
func (SysUserLog) TableName() string {
	return "sys_user_log"
}

// SysPaymentEvent marks a payment-provider webhook event as processed so a
// redelivered event never grants credits twice.
type SysPaymentEvent struct {
	ID        int64     `json:"id,string"`
	EventId   string    `gorm:"uniqueIndex;size:128" json:"event_id"`
	UserId    int64     `gorm:"index" json:"user_id,string"`
	Credits   int64     `json:"credits"`
	Reference string    `gorm:"size:64" json:"reference"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName Specify table name
func (SysPaymentEvent) TableName() string {
	return "sys_payment_event"
}
