package fortune

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/mroth/weightedrand/v2"

	"golf-fortune-engine/internal/models"
)

// shortGameHandicap is the handicap from which skill lines focus on the short game.
const shortGameHandicap = 20

// variant is one weighted template line.
type variant struct {
	text   string
	weight uint
}

type pool = *weightedrand.Chooser[string, uint]

func newPool(variants ...variant) pool {
	choices := make([]weightedrand.Choice[string, uint], 0, len(variants))
	for _, v := range variants {
		choices = append(choices, weightedrand.NewChoice(v.text, v.weight))
	}
	chooser, err := weightedrand.NewChooser(choices...)
	if err != nil {
		panic(fmt.Sprintf("invalid template pool: %v", err))
	}
	return chooser
}

// templateBank holds every fallback line. Lines use {placeholder} markers
// filled by a strings.Replacer, so rendering cannot fail.
type templateBank struct {
	greetingWithTime    pool
	greetingWithoutTime pool
	overall             map[models.Element]pool
	mental              map[string]pool
	mentalDefault       pool
	skill               map[ClubCategory]pool
	shortGame           pool
	physical            pool
	network             pool
	summary             pool
	final               pool
}

var bank = newTemplateBank()

func newTemplateBank() *templateBank {
	return &templateBank{
		greetingWithTime: newPool(
			variant{"좋네… 자네 {name}의 운세를 보자고 했지? 생년월일 보니 {birthDate}생, {birthTime}에 태어난 {gender}라구? 음, 기운이 뚜렷하네.", 3},
			variant{"어서 오게, {name}. {birthDate}생에 {birthTime}이라… 이 늙은이가 천 년 골프 인생을 걸고 자네 올해 운을 짚어 보겠네.", 2},
		),
		greetingWithoutTime: newPool(
			variant{"좋네… 자네 {name}의 운세를 보자고 했지? 생년월일 보니 {birthDate}생이로구먼. 태어난 시는 몰라도 기운은 뚜렷하네.", 3},
			variant{"어서 오게, {name}. {birthDate}생이라… 시는 몰라도 괜찮네, 이 늙은이 눈에는 자네 기운이 훤히 보인다네.", 2},
		),
		overall: map[models.Element]pool{
			models.ElementWood: newPool(
				variant{"올해 자네 골프 운세는 {elementName}이 강하게 들어와 있네. {personality}한 성격으로 {golfStyle}인 플레이가 잘 맞을 걸세. 봄에 새싹이 돋듯 비거리가 쭉쭉 늘어나는 해라네.", 3},
				variant{"나무가 하늘로 뻗어 오르듯 올해 자네 골프도 위로 치고 올라가는 기운이구먼. {golfStyle}인 기질을 믿고 과감하게 휘두르게. 다만 뿌리가 흔들리지 않게 기본을 챙겨야 한다네.", 2},
			),
			models.ElementFire: newPool(
				variant{"올해 자네 골프 운세는 {elementName}이 활활 타오르는 형국이네. {personality}한 성격이라 {golfStyle}인 플레이로 타수를 지켜 낼 걸세. 불길이 너무 세지 않게만 다스리면 된다네.", 3},
				variant{"불의 기운이 자네 샷에 힘을 실어 주는 해라네. 핀을 향한 {strength} 한 방이 빛을 볼 걸세. 서두르지 말고 불씨를 오래 지키는 게 요령이구먼.", 2},
			),
			models.ElementEarth: newPool(
				variant{"올해 자네 골프 운세는 {elementName}이 단단히 자리를 잡았네. {personality}한 성격으로 {golfStyle}인 플레이가 잘 맞을 걸세. 땅을 다지듯 천천히 기초를 세우는 해라네.", 3},
				variant{"흙은 모든 것을 품는 법이지. 올해 자네는 그린 위에서 그 기운을 제대로 쓰게 될 걸세. 한 방보다 꾸준함이 자네를 높은 곳으로 데려갈 거라네.", 2},
			),
			models.ElementMetal: newPool(
				variant{"올해 자네 골프 운세는 {elementName}이 날카롭게 서 있네. {personality}한 성격으로 {golfStyle}인 플레이가 빛을 볼 걸세. 잘 벼린 칼처럼 정확함이 자네 무기라네.", 3},
				variant{"쇠는 두드릴수록 단단해지는 법이라네. 올해 자네 {strength}와 {strength2}가 한층 정교해질 걸세. 다만 너무 완벽만 좇다 보면 몸이 굳으니 조심하게.", 2},
			),
			models.ElementWater: newPool(
				variant{"올해 자네 골프 운세는 {elementName}이 고요히 흐르고 있네. {personality}한 성격으로 {golfStyle}인 플레이가 잘 맞을 걸세. 물 흐르듯 코스에 몸을 맡기면 길이 보일 거라네.", 3},
				variant{"물은 막히면 돌아가는 법이지. 올해 자네는 어려운 홀도 유연하게 풀어 갈 걸세. 그린 위 감각이 특히 살아나는 해라네.", 2},
			),
		},
		mental: map[string]pool{
			"활발하고 도전적": newPool(
				variant{"골프는 멘탈이 절반이야. 올해 자네는 OB나 해저드에 빠져도, 그 다음 샷에 집중하면 흐름이 다시 살아날 거라네. 도전하는 마음은 좋지만 한 타에 목숨 걸지는 말게.", 3},
				variant{"자네는 불도저처럼 밀고 나가는 기질이 있구먼. 올해는 그 기세에 한 박자 쉬어 가는 여유를 더하면 큰 실수가 줄어들 걸세.", 2},
			),
			"신중하고 안정적": newPool(
				variant{"신중한 자네 마음은 큰 자산이라네. 다만 올해는 {weakness}이 흔들리는 날이 있을 터이니, 샷 전에 숨을 한 번 고르게. 그 한 호흡이 타수를 지켜 줄 걸세.", 3},
				variant{"자네는 돌다리도 두드려 보는 사람이구먼. 올해는 생각이 많아질 때 과감히 믿고 치는 연습을 하게. 그러면 마음이 한결 가벼워질 걸세.", 2},
			),
			"창의적이고 예술적": newPool(
				variant{"자네 머릿속엔 남들이 못 보는 길이 보이지. 올해는 그 상상력이 위기 탈출에 큰 힘이 될 걸세. 다만 기분에 따라 흔들리지 않게 루틴을 지키게.", 3},
				variant{"예술가 기질이 있는 자네는 흐름을 타면 무섭다네. 올해는 나쁜 홀을 빨리 잊는 연습만 하면 멘탈 운이 활짝 열릴 걸세.", 2},
			),
			"논리적이고 분석적": newPool(
				variant{"자네는 코스를 계산으로 푸는 사람이구먼. 올해는 그 분석이 제대로 맞아떨어질 걸세. 다만 계산이 빗나갔을 때 스스로를 너무 탓하지는 말게.", 3},
				variant{"생각이 깊은 건 좋은데, 어드레스에서 너무 오래 머무르면 몸이 굳는다네. 올해는 결정은 빠르게, 스윙은 믿고 가게.", 2},
			),
			"감성적이고 직관적": newPool(
				variant{"자네는 느낌으로 치는 골퍼라네. 올해는 그 직감이 자주 들어맞을 걸세. 마음이 출렁일 땐 하늘 한 번 보고 웃으면 다시 잔잔해질 거라네.", 3},
				variant{"감이 좋은 날엔 누구도 자네를 못 막지. 올해는 감이 안 좋은 날을 버티는 힘을 기르면 멘탈 운이 단단해질 걸세.", 2},
			),
		},
		mentalDefault: newPool(
			variant{"골프는 멘탈이 절반이야. 올해 자네는 OB나 해저드에 빠져도, 그 다음 샷에 집중하면 흐름이 다시 살아날 거라네.", 1},
		),
		skill: map[ClubCategory]pool{
			CategoryDriver: newPool(
				variant{"자네 {strength} 기운이 올해 제대로 터질 걸세. 티샷 하나로 홀의 흐름을 바꾸는 날이 많을 거라네. 다만 {weakness}은 조금 더 다듬어야 스코어가 따라온다네.", 3},
				variant{"{strength}와 {strength2}는 자네 타고난 무기라네. 올해는 힘을 빼고 리듬으로 치면 거리와 방향을 다 잡을 걸세.", 2},
			),
			CategoryIron: newPool(
				variant{"올해는 {strength}이 자네를 살리는 해라네. 그린을 노리는 샷이 핀 가까이 붙는 날이 많을 걸세. {weakness} 쪽만 조금 챙기면 금상첨화구먼.", 3},
				variant{"자네 {strength}과 {strength2} 솜씨가 올해 한층 무르익을 걸세. 거리 욕심보다 정확함을 믿고 가면 버디 기회가 찾아온다네.", 2},
			),
			CategoryWedge: newPool(
				variant{"{strength} 감각이 올해 자네 비밀 병기라네. 그린 주변에서 한 타씩 줄여 가는 재미가 쏠쏠할 걸세.", 3},
			),
			CategoryPutter: newPool(
				variant{"그린 위에서 자네를 이길 사람이 드물 걸세. 올해는 {strength} 감이 유난히 좋은 해라네. 다만 {weakness}이 흔들리면 티샷부터 차분히 다잡게.", 3},
				variant{"자네 손끝 감각은 타고났구먼. 올해는 {strength}으로 타수를 지키고, {weakness}은 욕심 없이 안전하게 가면 된다네.", 2},
			),
		},
		shortGame: newPool(
			variant{"{strength}은 아직 들쑥날쑥하지만, 올해는 숏게임에서 성과가 크게 보일 걸세. 퍼팅과 웨지를 꾸준히 만지면 타수가 눈에 띄게 줄어들 거라네.", 3},
			variant{"올해는 그린 주변이 자네 승부처라네. 어프로치 한 번, 퍼팅 한 번에 정성을 들이면 {strength} 욕심을 안 부려도 스코어가 따라올 걸세.", 2},
		),
		physical: newPool(
			variant{"몸의 기운이 순환하는 해라, 무리하게 치는 것보다 라운딩 뒤 회복과 스트레칭이 중요하다네. 허리와 손목을 아끼면 가을까지 힘이 남을 걸세.", 3},
			variant{"올해는 체력이 고르게 받쳐 주는 해라네. 다만 한여름 라운드에선 물을 자주 마시고 그늘에서 숨을 돌리게. 몸이 편해야 스윙도 편한 법이지.", 2},
			variant{"기운은 넘치는데 몸이 따라가지 못하는 날이 있을 걸세. 라운드 전 십 분 몸풀기만 지켜도 부상 걱정은 덜 거라네.", 1},
		),
		network: newPool(
			variant{"동반자 운이 강하게 들어와 있네. 좋은 멘토 같은 골퍼를 만날 기회가 있겠구먼. 그 인연이 자네 골프를 한 단계 끌어올릴 걸세.", 3},
			variant{"올해는 함께 치는 사람이 복을 가져다주는 해라네. 오래 못 본 친구에게 라운드를 청해 보게. 뜻밖의 좋은 소식이 따라올 걸세.", 2},
			variant{"새 동반자와 궁합이 잘 맞는 해라네. 처음 만난 사람과의 라운드에서 자네 진가가 드러날 걸세.", 1},
		),
		summary: newPool(
			variant{"한마디로 {personality}이라네. 올해 자네 골프 운세는 한 방에 확 튀어 오르는 해가 아니라, 땅을 다지고 천천히 기초를 세우는 해라네. {recommendation}", 3},
			variant{"한마디로 {personality}이라네. {golfStyle}인 기질을 믿되 {weakness}만 다독이면 올해는 분명 웃으며 마무리할 걸세. {recommendation}", 2},
		),
		final: newPool(
			variant{"허허, 그러니 너무 조급해 말고… 올해는 {strength}와 멘탈, 그리고 기본기만 믿고 가면 자네 골프 인생에 큰 길이 열릴 걸세. {nameCall}, 오늘도 즐거운 라운드 되게!", 3},
			variant{"허허, 공은 둥글고 인생도 둥근 법이라네. {nameCall}, 올해는 {color}색 기운을 몸에 두르고 즐겁게 치게나!", 2},
		),
	}
}

// render fills all eight sections. The caller must serialize access to rng.
func (b *templateBank) render(rng *rand.Rand, input models.UserInput, analysis models.ElementAnalysis) models.FortuneSections {
	r := placeholders(input, analysis)

	greeting := b.greetingWithoutTime
	if input.HasBirthTime() {
		greeting = b.greetingWithTime
	}

	overall, ok := b.overall[analysis.Element]
	if !ok {
		overall = b.overall[models.ElementWood]
	}

	mental, ok := b.mental[analysis.Personality]
	if !ok {
		mental = b.mentalDefault
	}

	skill := b.shortGame
	if input.Handicap < shortGameHandicap {
		category, found := CategoryFor(analysis.Strengths[0])
		if !found {
			category = CategoryForAnalysis(analysis)
		}
		skill = b.skill[category]
	}

	return models.FortuneSections{
		Greeting:        r.Replace(greeting.PickSource(rng)),
		OverallFlow:     r.Replace(overall.PickSource(rng)),
		MentalFortune:   r.Replace(mental.PickSource(rng)),
		SkillFortune:    r.Replace(skill.PickSource(rng)),
		PhysicalFortune: r.Replace(b.physical.PickSource(rng)),
		NetworkFortune:  r.Replace(b.network.PickSource(rng)),
		Summary:         r.Replace(b.summary.PickSource(rng)),
		FinalAdvice:     r.Replace(b.final.PickSource(rng)),
	}
}

func placeholders(input models.UserInput, analysis models.ElementAnalysis) *strings.Replacer {
	name := displayName(input.Name)
	birthTime := input.BirthTime
	if !input.HasBirthTime() {
		birthTime = models.UnknownBirthTime
	}
	gender := input.Gender
	if gender == "" {
		gender = "골퍼"
	}

	return strings.NewReplacer(
		"{name}", name,
		"{nameCall}", vocative(name),
		"{birthDate}", input.BirthDate,
		"{birthTime}", birthTime,
		"{gender}", gender,
		"{handicap}", strconv.Itoa(input.Handicap),
		"{element}", string(analysis.Element),
		"{elementName}", analysis.ElementName,
		"{personality}", analysis.Personality,
		"{golfStyle}", analysis.GolfStyle,
		"{strength}", analysis.Strengths[0],
		"{strength2}", analysis.Strengths[1],
		"{weakness}", analysis.Weaknesses[0],
		"{weakness2}", analysis.Weaknesses[1],
		"{color}", analysis.LuckyColors[0],
		"{recommendation}", sentence(analysis.Recommendations[0]),
	)
}

func displayName(name string) string {
	if name = strings.TrimSpace(name); name == "" {
		return "골퍼"
	}
	return name
}

// vocative appends 아 after a final consonant and 야 otherwise, as in 철수야 or 민준아.
func vocative(name string) string {
	runes := []rune(name)
	if len(runes) == 0 {
		return name
	}
	last := runes[len(runes)-1]
	if last < 0xAC00 || last > 0xD7A3 {
		return name
	}
	if (last-0xAC00)%28 == 0 {
		return name + "야"
	}
	return name + "아"
}

// sentence turns an imperative recommendation into the elder's register.
func sentence(rec string) string {
	rec = strings.TrimSpace(rec)
	if rec == "" {
		return ""
	}
	return "이 늙은이 말 한마디 보태자면, " + rec + "."
}
