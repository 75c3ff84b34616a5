package locale

import "regexp"

// Control label sets. Order inside each list is resolution priority.
var (
	// ApplyEntry opens the in-site application wizard
	ApplyEntry = Matcher{
		Name: "apply_entry",
		Labels: []string{
			"Easy Apply", "一键申请", "快速申请",
			"Einfach bewerben", "Candidature simplifiée", "Solicitud sencilla",
		},
	}

	// Submit finalizes an application. Controls matching it are never clicked.
	Submit = Matcher{
		Name: "submit",
		Labels: []string{
			"Submit application", "提交申请",
			"Bewerbung senden", "Envoyer la candidature", "Enviar solicitud",
		},
		MatchAria: true,
	}

	// Advance moves the wizard one step forward
	Advance = Matcher{
		Name: "advance",
		Labels: []string{
			"Next", "下一步", "Weiter", "Suivant", "Siguiente",
			"Review", "审核", "Überprüfen", "Vérifier", "Revisar",
		},
	}

	// Expand reveals collapsed description text
	Expand = Matcher{
		Name:      "expand",
		Labels:    []string{"See more", "Show more", "显示全部", "展开", "查看更多"},
		MatchAria: true,
	}

	// PaginationNext moves a result list to its next page
	PaginationNext = Matcher{
		Name:      "pagination_next",
		Labels:    []string{"Next", "下一页", "Weiter", "Suivant", "Siguiente"},
		MatchAria: true,
	}
)

// Text markers used by the extractor when reading rendered page text
var (
	// DescriptionStart is the heading that opens the job description section
	DescriptionStart = regexp.MustCompile(`(?i)(关于职位|About the job|Über den Job|À propos de l’offre d’emploi|Acerca del empleo)`)

	// DescriptionEnd is the first heading after the description
	DescriptionEnd = regexp.MustCompile(`(?i)(订阅相似职位|Subscribe to similar jobs|公司简介|About the company|更多职位|More jobs)`)

	// RelativeTime marks the top-card line that carries "location · posted N ago"
	RelativeTime = regexp.MustCompile(`(?i)(的时间|ago\b|\bvor \d|il y a|\bhace \d)`)

	// TitleNoise matches top-card lines that are never the job title
	TitleNoise = regexp.MustCompile(`(?i)(位关注者|点击了申请|申请|保存|人脉推荐|关于职位|公司简介|` +
		`^(over\s+)?\d[\d,.]*\+?\s+(followers?|applicants?|connections?)\b|clicked apply|` +
		`^applied(\s+(\d|on\b).*)?$|^(easy )?apply$|^save$|about the job|about the company)`)
)

// BulletSeparators split "location · posted" style lines
var BulletSeparators = []string{"·", "•"}
