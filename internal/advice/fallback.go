package advice

import (
	"strings"

	"github.com/sehatsaathi/sehat-backend/internal/models"
)

type cannedAdvice struct {
	keyword string
	text    string
}

// Checked in order; the first keyword contained in the symptoms wins.
var cannedAdvices = []cannedAdvice{
	{"overthinking", `🧠 Overthinking ho rahi hai? Ye solutions try karein:
• 10-15 minute walk karein ya light exercise karein
• Deep breathing - 5 minute tak gehri saans lein aur chhodain
• Kisi dost ya family member se baat karein
• Paani piyein aur aaram karein
⚠️ Agar 2-3 din tak anxiety rahe ya neend na aaye, counselor se baat karein`},

	{"sir dard", `🤕 Sir dard hai? Ye practical solutions try karein:
• Thandi patti se matha ponche aur aaram karein
• Ginger tea ya peppermint tea piyein
• Andhere room mein 30 minute aaram karein
• Pani khoob piyein
⚠️ Agar 3-4 ghante tak dard na jaye, vision blur ho, ya ulti ho - doctor ko dikhayein`},

	{"bukhar", `🤒 Bukhar hai? Ye immediate care lein:
• Khoob paani aur fluids piyein (nimbu pani, coconut water)
• Thanda poncha lagayein aur light kapde pehnein
• Halka khana khayein (khichdi, dal)
• Aaram karein aur neend poori karein
⚠️ Agar 101°F se zyada ho, 3 din tak rahe, ya weakness ho - doctor se milein`},

	{"pet dard", `🤢 Pet dard hai? Ye remedies try karein:
• Adrak ki chai ya jeera pani piyein
• Halka garam khana khayein (khichdi, daliya)
• Aaram karein aur walking karein
• Paani mein namak daal kar piyein
⚠️ Agar dard bahut tez ho, khoon aaye, ya 24 ghante tak rahe - turant doctor ke paas jayein`},

	{"khansi", `😷 Khansi hai? Ye solutions effective hain:
• Garam pani mein shahad daal kar piyein
• Steam lein - garam pani ki bhap se saans lein
• Haldi doodh raat ko piyein
• Masale wala khana avoid karein
⚠️ Agar khansi 1 hafte tak na jaye, bukhar ho, ya sans lene mein takleef ho - doctor se consult karein`},

	{"chakkar", `😵 Chakkar aa rahe hain? Ye immediate steps lein:
• Aaram se baith jayein ya let jayein
• Thoda paani piyein aur glucose lein
• Gehun ki roti ya biscuit khayein
• Achanak se na utthein
⚠️ Agar bar-bar chakkar aaye, chehra sun ho, ya bolne mein takleef ho - emergency services bulayein`},
}

const defaultAdvice = `🩺 Aapke symptoms ke liye ye practical solutions try karein:
• Aaram karein aur pani khoob piyein
• Halka khana khayein aur neend poori karein
• Light walking ya exercise karein
⚠️ Agar takleef barhti rahe ya 2-3 din tak improvement na ho - doctor se sampark karein`

// Fallback returns canned advice for the first matching keyword.
func Fallback(symptoms string) string {
	lower := strings.ToLower(symptoms)
	for _, a := range cannedAdvices {
		if strings.Contains(lower, a.keyword) {
			return a.text
		}
	}
	return defaultAdvice
}

var highSeverityWords = []string{"chest pain", "behosh", "saans", "bleeding", "khoon"}

// Severity classifies a symptom text for the health query log.
func Severity(symptoms string) string {
	lower := strings.ToLower(symptoms)
	for _, w := range highSeverityWords {
		if strings.Contains(lower, w) {
			return models.SeverityHigh
		}
	}
	return models.SeverityLow
}
