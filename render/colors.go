package render

// Board palette (Tokyo Night base)
var (
	RgbBackground = RGB{26, 27, 38}
	RgbBlack      = RGB{0, 0, 0}
	RgbSlotFrame  = RGB{86, 95, 137}
	RgbSlotEmpty  = RGB{59, 66, 97}
	RgbPlayerCard = RGB{122, 162, 247}
	RgbOpponent   = RGB{247, 118, 142}
	RgbRested     = RGB{120, 120, 120}
	RgbCardText   = RGB{192, 202, 245}
	RgbZoneLabel  = RGB{169, 177, 214}
	RgbArrow      = RGB{255, 158, 100}
	RgbImpact     = RGB{255, 255, 200}
	RgbPulseUp    = RGB{158, 206, 106}
	RgbPulseDown  = RGB{219, 75, 75}
	RgbStatusBar  = RGB{65, 72, 104}
	RgbStatusText = RGB{255, 255, 255}
	RgbHandBar    = RGB{41, 46, 66}
	RgbHandText   = RGB{224, 175, 104}
)
