package domain

var Tables = []interface{}{
	// System
	&SysConfig{},
	&SysUser{},
	&SysUserLog{},
	&SysPaymentEvent{},
	// Content
	&Product{},
}
