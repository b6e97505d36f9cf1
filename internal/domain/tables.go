package domain

var Tables = []interface{}{
	// System
	&SysConfig{},
	&SysOpr{},
	&SysOprLog{},
	&SysScheduler{},
	&AuthRefreshToken{},
	// Catalog
	&ServicePackage{},
	&Addon{},
	&GalleryPhoto{},
	// Booking
	&Booking{},
	&BookingAddon{},
	&Quote{},
	&Coupon{},
	// Reviews
	&Review{},
	&GoogleReviewCache{},
}
