// Package e2e runs the full pipeline against a reference corpus large enough
// to make retrieval ranking meaningful.
package e2e

import "strings"

// ReferenceDocument is one corpus entry: a source name and the passage that
// would be ingested under it.
type ReferenceDocument struct {
	Source  string
	Content string
}

// QueryCase pairs a free-text question with the source that must appear among
// the cited results. Signature is a phrase present verbatim in both the query
// and the expected document, which keeps the case meaningful under the
// deterministic mock embedder.
type QueryCase struct {
	Query          string
	Signature      string
	ExpectedSource string
	Description    string
}

// DiagnosisCase pairs a symptom list with a condition name fragment that must
// appear among the ranked suggestions. Symptom lists stay clear of emergency
// language so the scoring path is exercised rather than the override.
type DiagnosisCase struct {
	Symptoms          []string
	ExpectedCondition string
	Description       string
}

// Corpus holds the reference documents and the cases run against them.
type Corpus struct {
	Documents []ReferenceDocument
	Queries   []QueryCase
	Diagnoses []DiagnosisCase
}

// maxDocumentLength keeps every corpus document inside a single chunk at the
// production chunk budget, so a query case maps to exactly one indexed chunk.
const maxDocumentLength = 480

// BuildCorpus returns the reference corpus. Every document carries a
// distinctive signature phrase, and condition documents list their symptoms in
// comma-separated form the way the diagnosis retrieval query phrases them.
func BuildCorpus() *Corpus {
	return &Corpus{
		Documents: buildDocuments(),
		Queries:   buildQueryCases(),
		Diagnoses: buildDiagnosisCases(),
	}
}

func buildDocuments() []ReferenceDocument {
	return []ReferenceDocument{
		{
			Source: "influenza.md",
			Content: "Influenza is a contagious respiratory illness caused by influenza viruses. " +
				"Typical symptoms include fever, cough, sore throat, muscle aches, and fatigue. " +
				"The oseltamivir antiviral shortens the illness when started within 48 hours of onset. " +
				"Doctors reserve oseltamivir antiviral therapy for people at risk of complications.",
		},
		{
			Source: "common-cold.md",
			Content: "The common cold is a mild illness of the nose and throat, most often a rhinovirus infection. " +
				"Symptoms include runny nose, sneezing, congestion, and a mild cough. " +
				"A rhinovirus infection resolves on its own within seven to ten days. " +
				"Rest and fluids remain the standard care.",
		},
		{
			Source: "strep-throat.md",
			Content: "Strep throat is a bacterial streptococcal pharyngitis causing sudden sore throat and pain on swallowing. " +
				"Fever and swollen tonsils are common while cough is usually absent. " +
				"Confirmed streptococcal pharyngitis is treated with penicillin or amoxicillin to prevent complications.",
		},
		{
			Source: "migraine.md",
			Content: "A migraine is a recurrent headache with severe throbbing pain, often on one side of the head. " +
				"Nausea, vomiting, and light sensitivity frequently accompany attacks. " +
				"Some people notice a migraine aura of flashing lights before the headache begins. " +
				"Triptan medication taken at migraine aura onset can stop an attack.",
		},
		{
			Source: "tension-headache.md",
			Content: "A tension headache produces a dull, band-like pressure around the forehead. " +
				"Stress, poor posture, and eye strain are frequent triggers. " +
				"A tension headache responds well to rest, hydration, and simple pain relief. " +
				"Unlike migraine, nausea is uncommon.",
		},
		{
			Source: "gastroenteritis.md",
			Content: "Viral gastroenteritis, commonly called stomach flu, inflames the digestive tract. " +
				"Norovirus gastroenteritis spreads quickly through contaminated food and close contact. " +
				"Symptoms include nausea, vomiting, watery diarrhea, and abdominal cramps. " +
				"Oral rehydration prevents the dehydration that norovirus gastroenteritis can cause.",
		},
		{
			Source: "food-safety.md",
			Content: "Foodborne illness often follows salmonella contamination of undercooked poultry or eggs. " +
				"Symptoms begin six hours to six days after exposure with diarrhea, fever, and stomach cramps. " +
				"Thorough cooking and careful hand washing prevent salmonella contamination in home kitchens.",
		},
		{
			Source: "allergic-rhinitis.md",
			Content: "Seasonal allergic rhinitis, or hay fever, is an immune reaction to airborne allergens. " +
				"A pollen allergy causes sneezing, itchy watery eyes, and a runny nose in spring and autumn. " +
				"Antihistamines and nasal sprays relieve most pollen allergy symptoms. " +
				"Keeping windows closed on high pollen days reduces exposure.",
		},
		{
			Source: "asthma.md",
			Content: "Asthma narrows the airways and causes wheezing, shortness of breath, and a tight chest. " +
				"A bronchodilator inhaler relaxes the airway muscles within minutes during a flare. " +
				"Doctors prescribe a daily controller alongside the bronchodilator inhaler when symptoms recur. " +
				"Known triggers include exercise, cold air, and allergens.",
		},
		{
			Source: "bronchitis.md",
			Content: "Acute bronchitis is inflammation of the bronchial tubes, usually after a viral infection. " +
				"The main symptom is a persistent cough that may bring up phlegm. " +
				"Acute bronchitis generally clears within three weeks without antibiotics. " +
				"Wheezing and mild chest discomfort can linger.",
		},
		{
			Source: "pneumonia.md",
			Content: "Pneumonia is an infection that inflames the air sacs of the lungs. " +
				"Bacterial pneumonia causes high fever, productive cough, chills, and rapid breathing. " +
				"Older adults with bacterial pneumonia may show confusion rather than fever. " +
				"Prompt antibiotic treatment prevents serious complications.",
		},
		{
			Source: "anemia.md",
			Content: "Anemia means the blood carries too little hemoglobin to deliver oxygen. " +
				"Iron deficiency is its most common cause worldwide. " +
				"A low ferritin level confirms iron deficiency before supplements are started. " +
				"Fatigue, pale skin, and breathlessness on exertion are typical signs.",
		},
		{
			Source: "diabetes.md",
			Content: "Type 2 diabetes impairs the way the body regulates blood glucose. " +
				"Early signs include increased thirst, frequent urination, and unexplained fatigue. " +
				"Regular blood glucose monitoring guides diet, exercise, and medication such as metformin. " +
				"Untreated high glucose damages nerves, kidneys, and eyes over time.",
		},
		{
			Source: "hypertension.md",
			Content: "Hypertension, or high blood pressure, rarely causes symptoms until organ damage appears. " +
				"Readings above 140 over 90 on repeated visits confirm the condition. " +
				"Untreated high blood pressure raises the risk of heart disease and kidney failure. " +
				"Salt reduction, exercise, and medication bring most cases under control.",
		},
		{
			Source: "hypothyroidism.md",
			Content: "Hypothyroidism is an underactive thyroid gland producing too little hormone. " +
				"Weight gain, cold intolerance, dry skin, and constant fatigue develop gradually. " +
				"Blood tests measuring TSH confirm an underactive thyroid. " +
				"Daily levothyroxine replacement restores normal hormone levels.",
		},
		{
			Source: "dehydration.md",
			Content: "Dehydration develops when fluid loss exceeds intake during illness, heat, or exertion. " +
				"Early signs are thirst, dark urine, dry mouth, and lightheadedness. " +
				"An oral rehydration solution replaces both water and electrolytes. " +
				"Small frequent sips of oral rehydration fluid stay down even during vomiting.",
		},
		{
			Source: "sunburn.md",
			Content: "Sunburn is skin damage from ultraviolet exposure, appearing hours after time outdoors. " +
				"Mild cases cause redness, warmth, and tenderness that peak around day two. " +
				"Cool compresses and aloe vera gel soothe the burn while it heals. " +
				"Severe sunburn with blistering or fever needs medical attention.",
		},
		{
			Source: "eczema.md",
			Content: "Atopic eczema is a chronic skin condition causing dry, itchy, inflamed patches. " +
				"The rash favors the creases of elbows and knees. " +
				"Daily emollient moisturizers are the foundation of atopic eczema care. " +
				"Short courses of steroid cream settle stubborn patches.",
		},
		{
			Source: "hives.md",
			Content: "Hives are the everyday name for urticaria and appear as raised itchy welts on the skin. " +
				"Common triggers include foods, medications, insect stings, and infections. " +
				"Most raised itchy welts fade within a day as the histamine release settles. " +
				"Antihistamines relieve the itching and swelling.",
		},
		{
			Source: "conjunctivitis.md",
			Content: "Conjunctivitis, widely known as pink eye, inflames the membrane covering the white of the eye. " +
				"Viral cases cause watery discharge while bacterial cases produce thicker drainage. " +
				"Most pink eye clears without treatment in one to two weeks. " +
				"Hand washing stops its easy spread.",
		},
		{
			Source: "ear-infection.md",
			Content: "A middle ear infection, or otitis media, is common in young children after a cold. " +
				"Ear pain, fever, and irritability are the usual signs. " +
				"Many otitis media cases resolve without antibiotics within three days. " +
				"Persistent or severe cases need a medical review.",
		},
		{
			Source: "sinusitis.md",
			Content: "Sinusitis is inflammation of the sinus cavities around the nose and eyes. " +
				"A sinus infection causes facial pressure, thick nasal discharge, and congestion. " +
				"Most sinus infection cases follow a cold and clear within ten days. " +
				"Steam inhalation and saline rinses ease the pressure.",
		},
		{
			Source: "uti.md",
			Content: "A urinary tract infection most often affects the bladder. " +
				"Burning during urination, urgency, and cloudy urine are characteristic. " +
				"Lower urinary tract infections respond quickly to a short antibiotic course. " +
				"Drinking plenty of water helps flush bacteria out.",
		},
		{
			Source: "back-pain.md",
			Content: "Most short-term back pain is a lumbar strain from lifting, twisting, or poor posture. " +
				"Staying gently active speeds recovery better than bed rest. " +
				"A lumbar strain typically improves within two weeks with heat and simple pain relief. " +
				"Pain spreading down a leg warrants assessment.",
		},
		{
			Source: "ankle-sprain.md",
			Content: "An ankle sprain stretches or tears the ligaments that stabilize the joint. " +
				"Swelling, bruising, and pain on weight bearing follow the injury. " +
				"Early ankle sprain care is rest, ice, compression, and elevation. " +
				"Most people walk normally again within a few weeks.",
		},
		{
			Source: "insomnia.md",
			Content: "Insomnia is persistent difficulty falling or staying asleep despite the chance to rest. " +
				"Good sleep hygiene is the first treatment step. " +
				"Consistent bedtimes, a dark cool room, and no screens before bed all count as sleep hygiene measures. " +
				"Daytime fatigue and poor concentration are the usual consequences.",
		},
		{
			Source: "vitamin-d.md",
			Content: "Vitamin D deficiency is common in regions with little winter sunlight. " +
				"Bone pain, muscle weakness, and low mood are possible signs. " +
				"Blood testing confirms vitamin D deficiency before supplements begin. " +
				"Daily cholecalciferol tablets restore levels within months.",
		},
		{
			Source: "mononucleosis.md",
			Content: "Infectious mononucleosis, caused by the Epstein-Barr virus, spreads through saliva. " +
				"Profound fatigue, sore throat, fever, and swollen glands can last for weeks. " +
				"Teenagers and young adults get infectious mononucleosis most often. " +
				"Rest is the main treatment while the illness runs its course.",
		},
		{
			Source: "chickenpox.md",
			Content: "Chickenpox is a highly contagious varicella infection causing an itchy blistering rash. " +
				"The rash spreads from the trunk to the face and limbs over several days. " +
				"Two doses of varicella vaccine prevent most cases entirely. " +
				"Adults who catch chickenpox tend to be sicker than children.",
		},
		{
			Source: "measles.md",
			Content: "Measles is a highly contagious viral illness that starts with high fever, cough, and red eyes. " +
				"Tiny white Koplik spots inside the cheeks precede the skin eruption. " +
				"The measles rash spreads from the hairline downward over three days. " +
				"Vaccination with two MMR doses gives lifelong protection.",
		},
	}
}

func buildQueryCases() []QueryCase {
	return []QueryCase{
		{
			Query:          "oseltamivir antiviral treatment for influenza",
			Signature:      "oseltamivir antiviral",
			ExpectedSource: "influenza.md",
			Description:    "flu antiviral query finds the influenza reference",
		},
		{
			Query:          "how long does a rhinovirus infection last",
			Signature:      "rhinovirus infection",
			ExpectedSource: "common-cold.md",
			Description:    "cold duration query finds the common cold reference",
		},
		{
			Query:          "is streptococcal pharyngitis treated with penicillin",
			Signature:      "streptococcal pharyngitis",
			ExpectedSource: "strep-throat.md",
			Description:    "strep treatment query finds the strep throat reference",
		},
		{
			Query:          "migraine aura with light sensitivity",
			Signature:      "migraine aura",
			ExpectedSource: "migraine.md",
			Description:    "aura query finds the migraine reference",
		},
		{
			Query:          "norovirus gastroenteritis with watery diarrhea",
			Signature:      "norovirus gastroenteritis",
			ExpectedSource: "gastroenteritis.md",
			Description:    "stomach flu query finds the gastroenteritis reference",
		},
		{
			Query:          "pollen allergy sneezing relief",
			Signature:      "pollen allergy",
			ExpectedSource: "allergic-rhinitis.md",
			Description:    "hay fever query finds the allergic rhinitis reference",
		},
		{
			Query:          "bronchodilator inhaler for wheezing",
			Signature:      "bronchodilator inhaler",
			ExpectedSource: "asthma.md",
			Description:    "inhaler query finds the asthma reference",
		},
		{
			Query:          "ferritin test for iron deficiency",
			Signature:      "iron deficiency",
			ExpectedSource: "anemia.md",
			Description:    "iron query finds the anemia reference",
		},
		{
			Query:          "blood glucose monitoring in diabetes",
			Signature:      "blood glucose",
			ExpectedSource: "diabetes.md",
			Description:    "glucose query finds the diabetes reference",
		},
		{
			Query:          "oral rehydration solution for dehydration",
			Signature:      "oral rehydration",
			ExpectedSource: "dehydration.md",
			Description:    "rehydration query finds the dehydration reference",
		},
		{
			Query:          "urticaria with raised itchy welts",
			Signature:      "raised itchy welts",
			ExpectedSource: "hives.md",
			Description:    "welts query finds the hives reference",
		},
		{
			Query:          "levothyroxine for an underactive thyroid",
			Signature:      "underactive thyroid",
			ExpectedSource: "hypothyroidism.md",
			Description:    "thyroid query finds the hypothyroidism reference",
		},
		{
			Query:          "lumbar strain recovery and activity",
			Signature:      "lumbar strain",
			ExpectedSource: "back-pain.md",
			Description:    "back strain query finds the back pain reference",
		},
		{
			Query:          "sleep hygiene habits for insomnia",
			Signature:      "sleep hygiene",
			ExpectedSource: "insomnia.md",
			Description:    "sleep query finds the insomnia reference",
		},
		{
			Query:          "varicella vaccine for chickenpox",
			Signature:      "varicella vaccine",
			ExpectedSource: "chickenpox.md",
			Description:    "vaccine query finds the chickenpox reference",
		},
	}
}

func buildDiagnosisCases() []DiagnosisCase {
	return []DiagnosisCase{
		{
			Symptoms:          []string{"fever", "cough", "sore throat"},
			ExpectedCondition: "Upper respiratory infection",
			Description:       "classic flu presentation suggests an upper respiratory infection",
		},
		{
			Symptoms:          []string{"severe headache", "light sensitivity", "nausea"},
			ExpectedCondition: "Migraine or tension headache",
			Description:       "headache with aura features suggests migraine",
		},
		{
			Symptoms:          []string{"nausea", "vomiting", "watery diarrhea"},
			ExpectedCondition: "Gastrointestinal infection",
			Description:       "digestive symptoms suggest gastroenteritis",
		},
		{
			Symptoms:          []string{"sneezing", "itchy watery eyes", "runny nose"},
			ExpectedCondition: "Seasonal allergies",
			Description:       "allergy symptoms suggest allergic rhinitis",
		},
	}
}

// FindDocument returns the corpus document with the given source name.
func (c *Corpus) FindDocument(source string) (ReferenceDocument, bool) {
	for _, d := range c.Documents {
		if d.Source == source {
			return d, true
		}
	}
	return ReferenceDocument{}, false
}

// containsSignature reports whether text carries the signature phrase.
func containsSignature(text, signature string) bool {
	return strings.Contains(strings.ToLower(text), strings.ToLower(signature))
}
