package domain

import (
	"time"
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

type SysOpr struct {
	ID       int64  `json:"id,string" form:"id"`
	Realname string `json:"realname" form:"realname"`
	Mobile   string `json:"mobile" form:"mobile"`
	Email    string `json:"email" form:"email"`
	Username string `gorm:"uniqueIndex" json:"username" form:"username"`
	Password string `json:"-" form:"-"`
	// TotpSecret enables the TOTP second factor when non-empty
	TotpSecret string    `json:"-" form:"-"`
	Level      string    `json:"level" form:"level"`
	Status     string    `json:"status" form:"status"`
	Remark     string    `json:"remark" form:"remark"`
	LastLogin  time.Time `json:"last_login" form:"last_login"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName Specify table name
func (SysOpr) TableName() string {
	return "sys_opr"
}

type SysOprLog struct {
	ID        int64     `json:"id,string"`
	OprName   string    `json:"opr_name"`
	OprIp     string    `json:"opr_ip"`
	OptAction string    `json:"opt_action"`
	OptDesc   string    `json:"opt_desc"`
	OptTime   time.Time `json:"opt_time"`
}

// TableName Specify table name
func (SysOprLog) TableName() string {
	return "sys_opr_log"
}

// SysScheduler is a database-driven periodic task definition. The scheduler
// loop executes enabled rows whose next_run_at has passed.
type SysScheduler struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"size:100" json:"name"`
	TaskType    string    `gorm:"size:50;index" json:"task_type"`
	Interval    int       `json:"interval"` // seconds
	Config      string    `gorm:"type:text" json:"config"`
	Status      string    `gorm:"size:20;index;default:'enabled'" json:"status"`
	LastRunAt   time.Time `json:"last_run_at"`
	NextRunAt   time.Time `json:"next_run_at"`
	LastResult  string    `gorm:"size:20" json:"last_result"`
	LastMessage string    `gorm:"size:500" json:"last_message"`
	Remark      string    `gorm:"size:500" json:"remark"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName Specify table name
func (SysScheduler) TableName() string {
	return "sys_scheduler"
}
