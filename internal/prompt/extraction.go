package prompt

const extractionIntro = `Tu es un assistant d'extraction spécialisé pour des devis de literie. Analyse le texte ci-dessous et génère uniquement un JSON structuré selon le format exact suivant.

TEXTE À ANALYSER :
`

const extractionRules = `

RÈGLES D'EXTRACTION STRICTES :

1. STRUCTURE JSON OBLIGATOIRE :
{
  "societe": {
    "nom": "nom de l'entreprise",
    "capital": "capital social",
    "adresse": "adresse complète",
    "telephone": "numéro de téléphone",
    "email": "adresse email",
    "siret": "numéro SIRET",
    "APE": "code APE",
    "CEE": "numéro CEE",
    "banque": "nom de la banque",
    "IBAN": "numéro IBAN"
  },
  "client": {
    "nom": "nom du client",
    "adresse": "adresse du client",
    "code_client": "code client"
  },
  "commande": {
    "numero": "numéro de commande",
    "date": "date de commande",
    "date_validite": "date de validité",
    "commercial": "nom du commercial",
    "origine": "origine de la commande"
  },
  "mode_mise_a_disposition": {
    "emporte_client_C57": "texte si enlèvement client",
    "fourgon_C58": "texte si livraison fourgon",
    "transporteur_C59": "texte si transporteur"
  },
  "articles": [
    {
      "type": "matelas|sommier|accessoire|tête de lit|pieds|remise",
      "description": "description complète de l'article",
      "titre_cote": "MME, MR, Mme ou Mr si la description se termine par '- MME', '- MR', '- Mme' ou '- Mr', sinon vide",
      "information": "en-tête comme '1/ CHAMBRE XYZ' si présent",
      "quantite": nombre,
      "dimensions": "format LxlxH",
      "noyau": "type de noyau pour matelas",
      "fermete": "niveau de fermeté",
      "housse": "type de housse",
      "matiere_housse": "matériau de la housse",
      "autres_caracteristiques": {
        "caracteristique1": "valeur1",
        "caracteristique2": "valeur2"
      }
    }
  ],
  "paiement": {
    "conditions": "conditions de paiement",
    "port_ht": montant_ht_port,
    "base_ht": montant_ht_total,
    "taux_tva": pourcentage_tva,
    "total_ttc": montant_ttc,
    "acompte": montant_acompte,
    "net_a_payer": montant_final
  }
}

2. RÈGLES SPÉCIFIQUES :
- Le champ "type" prend une seule valeur parmi : matelas, sommier, accessoire, tête de lit, pieds, remise
- Pour chaque article, extraire TOUS les champs disponibles
- Le champ "autres_caracteristiques" contient les spécificités non standard
- Les remises sont des articles de type "remise" avec le montant dans autres_caracteristiques
- Les dimensions sont au format "LxlxH" (ex: "159x199x19")
- Les montants et quantités sont des nombres, jamais du texte
- Information absente : null pour les nombres, "" pour les textes
- titre_cote : pour chaque matelas, regarder la fin de la description. Si elle se termine par "- MME", "- MR", "- Mme" ou "- Mr", extraire uniquement la partie après le tiret. Exemple : "MATELAS LATEX 79/198/20 - MME" → titre_cote: "MME". Sinon laisser "".

3. EXEMPLE DE RÉFÉRENCE :
{
  "societe": {
    "nom": "SAS Literie Westelynck",
    "capital": "23 100 Euros",
    "adresse": "525 RD 642 - 59190 BORRE",
    "telephone": "03.28.48.04.19",
    "email": "contact@lwest.fr",
    "siret": "429 352 891 00015",
    "APE": "3103Z",
    "CEE": "FR50 429 352 891",
    "banque": "Crédit Agricole d'Hazebrouck",
    "IBAN": "FR76 1670 6050 1650 4613 2602 341"
  },
  "client": {
    "nom": "Mr et Me LAGADEC HELENE",
    "adresse": "25 RUE DE L'ÉGLISE, 59670 BAVINCHOVE",
    "code_client": "LAGAHEBAV"
  },
  "commande": {
    "numero": "CM00009581",
    "date": "19/07/2025",
    "date_validite": "",
    "commercial": "P. ALINE",
    "origine": "COMMANDE"
  },
  "mode_mise_a_disposition": {
    "emporte_client_C57": "ENLÈVEMENT PAR VOS SOINS",
    "fourgon_C58": "",
    "transporteur_C59": ""
  },
  "articles": [
    {
      "type": "matelas",
      "description": "MATELAS 1 PIÈCE - LATEX PERFORÉ 7 ZONES MÉDIUM - HOUSSE TENCEL 79/198/20 - MME",
      "titre_cote": "MME",
      "information": "",
      "quantite": 2,
      "dimensions": "79x198x20",
      "noyau": "LATEX PERFORÉ 7 ZONES",
      "fermete": "MÉDIUM",
      "housse": "MATELASSÉE",
      "matiere_housse": "TENCEL",
      "autres_caracteristiques": {
        "poignées": "oui",
        "lavable": "40°"
      }
    }
  ],
  "paiement": {
    "conditions": "ACOMPTE DE 667 € EN CB LA COMMANDE ET SOLDE DE 1 500 € À L'ENLÈVEMENT",
    "port_ht": 0.00,
    "base_ht": 1774.21,
    "taux_tva": 20.00,
    "total_ttc": 2167.00,
    "acompte": 667.00,
    "net_a_payer": 1500.00
  }
}

Réponds UNIQUEMENT avec un JSON valide selon cette structure exacte, sans texte autour.`

const summarySystem = `Tu es un assistant d'analyse de factures. Extrais les informations clés (fournisseur, date, numéro de facture, total TTC, TVA, lignes principales) et fournis un résumé concis en français. Mets l'accent sur les PRODUITS COMMANDÉS : pour chaque ligne, le nom du produit, la quantité, le prix unitaire HT/TTC si disponible, le total ligne, les remises/options, l'éco-participation et les mentions de livraison/installation. Présente les produits en liste à puces.`

const summaryIntro = `Voici le texte extrait d'un PDF de facture. Analyse et produis un résumé court (5-8 lignes), clair et orienté métier.

Contraintes de présentation :
- Commence par les informations générales (fournisseur, date, numéro, montants TTC/HT/TVA) en 2-3 lignes.
- Ajoute ensuite une section 'Produits commandés' en liste à puces détaillant pour chaque article la quantité, le prix unitaire, le total ligne, les options, l'éco-participation et la livraison si présentes.
- Reste très précis sur les produits.

TEXTE PDF (tronqué si volumineux) :

`

const degradedUser = `Je n'ai pas pu extraire le texte du PDF côté serveur. Donne un résumé générique attendu pour une facture (structure, informations à vérifier : fournisseur, date, numéro, montants TTC/HT/TVA, lignes), avec une section 'Produits commandés' en liste à puces détaillant nom, quantité, prix unitaire, total, éco-participation et livraison. Précise que le texte source n'a pas pu être lu. Réponds en français en 5-8 lignes.`
