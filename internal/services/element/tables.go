package element

import "golf-fortune-engine/internal/models"

// profile is one row of the element tables.
type profile struct {
	element         models.Element
	name            string
	personality     string
	golfStyle       string
	strengths       [2]string
	weaknesses      [2]string
	luckyColors     [2]string
	recommendations [2]string
}

// profiles is indexed by birthYear % 5. Stored records and UI copy depend on
// these literals; do not edit them.
var profiles = [models.ElementCount]profile{
	{
		element:         models.ElementWood,
		name:            "나무",
		personality:     "활발하고 도전적",
		golfStyle:       "공격적",
		strengths:       [2]string{"드라이버", "장타"},
		weaknesses:      [2]string{"퍼팅", "정확성"},
		luckyColors:     [2]string{"초록", "파랑"},
		recommendations: [2]string{"드라이버 연습에 집중하세요", "공격적인 플레이를 시도해보세요"},
	},
	{
		element:         models.ElementFire,
		name:            "불",
		personality:     "신중하고 안정적",
		golfStyle:       "안정적",
		strengths:       [2]string{"아이언", "어프로치"},
		weaknesses:      [2]string{"멘탈", "집중력"},
		luckyColors:     [2]string{"빨강", "주황"},
		recommendations: [2]string{"아이언 샷 연습을 많이 하세요", "열정적으로 플레이하세요"},
	},
	{
		element:         models.ElementEarth,
		name:            "흙",
		personality:     "창의적이고 예술적",
		golfStyle:       "창의적",
		strengths:       [2]string{"퍼팅", "정확성"},
		weaknesses:      [2]string{"장타", "공격성"},
		luckyColors:     [2]string{"노랑", "갈색"},
		recommendations: [2]string{"퍼팅 연습에 시간을 투자하세요", "안정적인 플레이를 하세요"},
	},
	{
		element:         models.ElementMetal,
		name:            "금",
		personality:     "논리적이고 분석적",
		golfStyle:       "전략적",
		strengths:       [2]string{"아이언", "샌드웨지"},
		weaknesses:      [2]string{"드라이버", "유연성"},
		luckyColors:     [2]string{"흰색", "금색"},
		recommendations: [2]string{"정확성을 중시하는 연습을 하세요", "완벽을 추구하되 스트레스는 피하세요"},
	},
	{
		element:         models.ElementWater,
		name:            "물",
		personality:     "감성적이고 직관적",
		golfStyle:       "감성적",
		strengths:       [2]string{"퍼팅", "그린플레이"},
		weaknesses:      [2]string{"아이언", "일관성"},
		luckyColors:     [2]string{"검정", "파랑"},
		recommendations: [2]string{"그린 위에서의 플레이를 연습하세요", "유연한 사고로 플레이하세요"},
	},
}

// defaultGolfStyle is used by the default analysis when the birth date is unreadable.
const defaultGolfStyle = "균형적"
