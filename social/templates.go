package social

// DMTemplate is one synthetic inbound order the generator can draw.
type DMTemplate struct {
	From    string `yaml:"from" json:"from"`
	Message string `yaml:"message" json:"message"`
}

// DefaultDMTemplates is the stock inbound-order pool. A sender with a
// pending thread is excluded from the draw, so the pool doubles as a
// cap on simultaneous open orders.
func DefaultDMTemplates() []DMTemplate {
	return []DMTemplate{
		{From: "달콤한하루", Message: "안녕하세요! 피드 보고 연락드려요. 딸기 케이크 주문 가능할까요?"},
		{From: "베이킹러버92", Message: "스콘 너무 맛있어 보여요! 6개 세트 주문하고 싶어요."},
		{From: "카페모모", Message: "저희 카페에 납품 가능하신가요? 마들렌 30개 정도 생각하고 있어요."},
		{From: "생일준비중", Message: "다음 주 토요일 생일 케이크 예약 가능한가요? 2호 사이즈로요."},
		{From: "쿠키몬스터", Message: "수제 쿠키 선물세트 문의드려요. 포장도 가능한가요?"},
		{From: "홈파티플래너", Message: "홈파티용 디저트 플래터 견적 부탁드립니다!"},
		{From: "회사원A", Message: "사무실 간식으로 파운드케이크 3개 주문할게요."},
		{From: "웨딩준비너굴", Message: "답례품으로 미니 마카롱 50개 가능할까요?"},
	}
}
