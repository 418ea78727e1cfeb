package games

import "github.com/mcdev12/nota/go/internal/models"

func init() {
	for _, g := range []Game{
		{
			ID:          models.GameGuessSong,
			Title:       "التخمين السريع",
			Description: "استمع للمقطع وخمّن اسم الأغنية أو الفنان بأسرع وقت ممكن.",
			Color:       "#A020F0",
		},
		{
			ID:          models.GameMusicalPictures,
			Title:       "الصور الموسيقية",
			Description: "شاهد الصور التي تعبر عن أغنية وحاول تخمين اسمها الصحيح.",
			Color:       "#40E0D0",
		},
		{
			ID:          models.GameKaraoke,
			Title:       "الكاريوكي",
			Description: "اختر أغنيتك المفضلة، غنِّ، وسجّل أداءك أو نافس أصدقاءك.",
			Color:       "#FFA500",
		},
		{
			ID:          models.GameSongLetter,
			Title:       "حرف الأغاني",
			Description: "تنافس مع 3 لاعبين آخرين في تحدي إيجاد أغنية تبدأ بآخر حرف.",
			Color:       "#FFD700",
		},
	} {
		if err := Register(g); err != nil {
			panic(err)
		}
	}
}
